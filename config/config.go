// Package config holds deployment settings. Values come from a JSON file (FLYTAU_CONFIG, or
// ./flytau.json), and any key can be overridden by an environment variable: "audit.table" is
// FLYTAU_AUDIT_TABLE.
package config

import(
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
)

var(
	mu   sync.RWMutex
	doc  string
	once sync.Once
)

var defaults = map[string]string{
	"homebase":     "TLV",
	"routes.ttl":   "5m",
	"log.level":    "info",
	"http.port":    "8080",
	"grpc.port":    "8081",
	"audit.dataset": "flytau",
	"audit.table":  "decisions",
}

func load() {
	filename := os.Getenv("FLYTAU_CONFIG")
	if filename == "" { filename = "flytau.json" }
	if b,err := os.ReadFile(filename); err == nil && gjson.ValidBytes(b) {
		mu.Lock()
		doc = string(b)
		mu.Unlock()
	}
}

// Set replaces the JSON document; mostly for tests and tools that take a --config flag.
func Set(jsonDoc string) {
	once.Do(func(){})
	mu.Lock()
	defer mu.Unlock()
	doc = jsonDoc
}

func envName(key string) string {
	return "FLYTAU_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// Get returns the value for a dotted key, or "" if not set anywhere.
func Get(key string) string {
	once.Do(load)

	if v,exists := os.LookupEnv(envName(key)); exists {
		return v
	}

	mu.RLock()
	res := gjson.Get(doc, key)
	mu.RUnlock()
	if res.Exists() {
		return res.String()
	}
	return defaults[key]
}

func GetInt(key string) int {
	i,_ := strconv.Atoi(Get(key))
	return i
}

// GetDuration parses values like "90s" or "5m"; a bare number is taken as seconds.
func GetDuration(key string) time.Duration {
	v := Get(key)
	if d,err := time.ParseDuration(v); err == nil {
		return d
	}
	return time.Duration(GetInt(key)) * time.Second
}
