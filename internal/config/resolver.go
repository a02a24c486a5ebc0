package config

import (
	"os"
	"os/exec"
	"strings"
)

// Resolver yields a configuration value or reports "try next". Resolvers are
// tried in order; the first hit wins.
type Resolver interface {
	Resolve() (string, bool)
}

// EnvResolver reads an environment variable. A value equal to the placeholder
// counts as unset.
type EnvResolver struct {
	Key         string
	Placeholder string
}

func (r EnvResolver) Resolve() (string, bool) {
	v := os.Getenv(r.Key)
	if v == "" || v == r.Placeholder {
		return "", false
	}
	return v, true
}

// SSMResolver shells out to the aws CLI for a parameter-store value. Any
// failure (no CLI, no credentials, missing parameter) means "try next".
type SSMResolver struct {
	Parameter string
}

func (r SSMResolver) Resolve() (string, bool) {
	out, err := exec.Command("aws", "ssm", "get-parameter",
		"--name", r.Parameter,
		"--query", "Parameter.Value",
		"--output", "text").Output()
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(string(out))
	if v == "" || v == "None" {
		return "", false
	}
	return v, true
}

// FileResolver reads a single-line local override file.
type FileResolver struct {
	Path string
}

func (r FileResolver) Resolve() (string, bool) {
	b, err := os.ReadFile(r.Path)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(string(b))
	if v == "" {
		return "", false
	}
	return v, true
}

// StaticResolver always resolves; it terminates a chain with a default.
type StaticResolver struct {
	Value string
}

func (r StaticResolver) Resolve() (string, bool) {
	return r.Value, true
}

// ResolveFirst runs a chain and returns the first value produced. An empty
// chain resolves to "".
func ResolveFirst(chain ...Resolver) string {
	for _, r := range chain {
		if v, ok := r.Resolve(); ok {
			return v
		}
	}
	return ""
}

// ResolveDataTierEndpoint resolves the data-tier base URL for the
// presentation tier.
func ResolveDataTierEndpoint() string {
	return ResolveFirst(
		EnvResolver{Key: "APP_TIER_ENDPOINT", Placeholder: EndpointPlaceholder},
		SSMResolver{Parameter: "/ab3/app/endpoint"},
		FileResolver{Path: "local_endpoint"},
		StaticResolver{Value: "http://localhost:8080"},
	)
}

// ResolveRedisHost resolves the Redis host for both backends' use.
func ResolveRedisHost() string {
	return ResolveFirst(
		EnvResolver{Key: "REDIS_HOST", Placeholder: RedisHostPlaceholder},
		SSMResolver{Parameter: "/ab3/redis/endpoint"},
		FileResolver{Path: "local_redis"},
		StaticResolver{Value: "localhost"},
	)
}
