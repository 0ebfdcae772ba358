package config

import (
	"slices"
	"strings"
	"testing"
	"time"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

type breakerSettings struct {
	Name             string
	FailureThreshold int
	Timeout          time.Duration
	OnStateChange    func(string)
}

type queueSettings struct {
	Capacity int
}

type streamSettings struct {
	Queue      queueSettings
	MaxRetries int    `env:"RETRIES"`
	Internal   string `env:"-"`
}

type baseSettings struct {
	Enabled bool
}

type embeddedSettings struct {
	baseSettings
	Rate float64
}

type allTypes struct {
	S   string
	B   bool
	I   int
	I8  int8
	I64 int64
	U   uint
	U16 uint16
	F32 float32
	F64 float64
	D   time.Duration
}

func TestLoad_Flat(t *testing.T) {
	l := Loader{lookup: envMap(map[string]string{
		"RXPIPE_PAYMENTS_NAME":              "payments",
		"RXPIPE_PAYMENTS_FAILURE_THRESHOLD": "3",
		"RXPIPE_PAYMENTS_TIMEOUT":           "30s",
	})}

	var cfg breakerSettings
	if err := l.Load("payments", &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "payments" || cfg.FailureThreshold != 3 || cfg.Timeout != 30*time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoad_NestedAndTags(t *testing.T) {
	l := Loader{lookup: envMap(map[string]string{
		"RXPIPE_INGEST_QUEUE_CAPACITY": "128",
		"RXPIPE_INGEST_RETRIES":        "4",
		"RXPIPE_INGEST_INTERNAL":       "ignored",
	})}

	var cfg streamSettings
	if err := l.Load("ingest", &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Queue.Capacity != 128 {
		t.Errorf("Queue.Capacity = %d, want 128", cfg.Queue.Capacity)
	}
	if cfg.MaxRetries != 4 {
		t.Errorf("MaxRetries = %d, want 4", cfg.MaxRetries)
	}
	if cfg.Internal != "" {
		t.Errorf("expected skipped field to stay empty, got %q", cfg.Internal)
	}
}

func TestLoad_Embedded(t *testing.T) {
	l := Loader{lookup: envMap(map[string]string{
		"RXPIPE_THROTTLE_ENABLED": "true",
		"RXPIPE_THROTTLE_RATE":    "2.5",
	})}

	var cfg embeddedSettings
	if err := l.Load("throttle", &cfg); err != nil {
		t.Fatal(err)
	}
	if !cfg.Enabled || cfg.Rate != 2.5 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoad_AllTypes(t *testing.T) {
	l := Loader{lookup: envMap(map[string]string{
		"RXPIPE_X_S":   "hello",
		"RXPIPE_X_B":   "true",
		"RXPIPE_X_I":   "-7",
		"RXPIPE_X_I8":  "127",
		"RXPIPE_X_I64": "9000000000",
		"RXPIPE_X_U":   "7",
		"RXPIPE_X_U16": "65535",
		"RXPIPE_X_F32": "1.5",
		"RXPIPE_X_F64": "2.25",
		"RXPIPE_X_D":   "150ms",
	})}

	var cfg allTypes
	if err := l.Load("x", &cfg); err != nil {
		t.Fatal(err)
	}
	want := allTypes{
		S: "hello", B: true, I: -7, I8: 127, I64: 9000000000,
		U: 7, U16: 65535, F32: 1.5, F64: 2.25, D: 150 * time.Millisecond,
	}
	if cfg != want {
		t.Errorf("got %+v, want %+v", cfg, want)
	}
}

func TestLoad_PreservesDefaults(t *testing.T) {
	l := Loader{lookup: envMap(map[string]string{
		"RXPIPE_CB_TIMEOUT": "5s",
	})}

	cfg := breakerSettings{Name: "default", FailureThreshold: 9}
	if err := l.Load("cb", &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "default" || cfg.FailureThreshold != 9 || cfg.Timeout != 5*time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoad_CustomPrefixAndStage(t *testing.T) {
	l := Loader{
		Prefix: "APP",
		lookup: envMap(map[string]string{
			"APP_ORDER_EVENTS_V2_CAPACITY": "10",
			"APP_CAPACITY":                 "20",
		}),
	}

	var staged queueSettings
	if err := l.Load("order-events.v2", &staged); err != nil {
		t.Fatal(err)
	}
	if staged.Capacity != 10 {
		t.Errorf("Capacity = %d, want 10", staged.Capacity)
	}

	var unstaged queueSettings
	if err := l.Load("", &unstaged); err != nil {
		t.Fatal(err)
	}
	if unstaged.Capacity != 20 {
		t.Errorf("Capacity = %d, want 20", unstaged.Capacity)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		dst  any
		want string
	}{
		{"invalid int", map[string]string{"RXPIPE_S_FAILURE_THRESHOLD": "many"}, &breakerSettings{}, "RXPIPE_S_FAILURE_THRESHOLD"},
		{"invalid duration", map[string]string{"RXPIPE_S_TIMEOUT": "soon"}, &breakerSettings{}, "RXPIPE_S_TIMEOUT"},
		{"int overflow", map[string]string{"RXPIPE_S_I8": "300"}, &allTypes{}, "RXPIPE_S_I8"},
		{"invalid bool", map[string]string{"RXPIPE_S_B": "maybe"}, &allTypes{}, "RXPIPE_S_B"},
		{"not a pointer", nil, breakerSettings{}, "pointer to a struct"},
		{"not a struct", nil, new(int), "pointer to a struct"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Loader{lookup: envMap(tt.env)}.Load("s", tt.dst)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	got := Keys("payments", breakerSettings{})
	want := []string{"RXPIPE_PAYMENTS_NAME", "RXPIPE_PAYMENTS_FAILURE_THRESHOLD", "RXPIPE_PAYMENTS_TIMEOUT"}
	if !slices.Equal(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}

	got = Loader{Prefix: "APP"}.Keys("s", &streamSettings{})
	want = []string{"APP_S_QUEUE_CAPACITY", "APP_S_RETRIES"}
	if !slices.Equal(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}

	if Keys("s", 42) != nil {
		t.Error("expected nil keys for non-struct")
	}
}

func TestToUpperSnake(t *testing.T) {
	tests := map[string]string{
		"Capacity":         "CAPACITY",
		"FailureThreshold": "FAILURE_THRESHOLD",
		"MaxRetries":       "MAX_RETRIES",
		"HTTPAddr":         "HTTP_ADDR",
		"Level2Cache":      "LEVEL2_CACHE",
		"ID":               "ID",
	}
	for in, want := range tests {
		if got := toUpperSnake(in); got != want {
			t.Errorf("toUpperSnake(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeStage(t *testing.T) {
	tests := map[string]string{
		"ingest":       "INGEST",
		"order-events": "ORDER_EVENTS",
		"a.b c":        "A_B_C",
		"drop!":        "DROP",
	}
	for in, want := range tests {
		if got := normalizeStage(in); got != want {
			t.Errorf("normalizeStage(%q) = %q, want %q", in, got, want)
		}
	}
}
