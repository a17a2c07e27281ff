package threadpool

import (
	"fmt"
	"strconv"
	"strings"
)

// defaultPoolThreads and defaultPoolMaxQueue are the auto-configured
// settings for the reserved "default" pool when it's referenced but
// never declared by a directive.
//
// Grounded on ngx_thread_pool_init_conf.
const (
	defaultPoolThreads  = 32
	defaultPoolMaxQueue = 65536
)

// defaultMaxQueue is the max_queue default for any explicitly declared
// pool that omits the option.
const defaultMaxQueue = 65536

// ParseDirective parses a `thread_pool NAME [threads=N] [max_queue=M]`
// directive's arguments (NAME first, then the key=value options in any
// order). threads is required and must be >= 1; max_queue defaults to
// 65536 and may be set to 0 to disable queueing.
//
// Grounded on the directive-parsing half of ngx_thread_pool_init_conf.
func ParseDirective(args []string) (Config, error) {
	if len(args) == 0 {
		return Config{}, fmt.Errorf("%w: directive requires a pool name", ErrInvalidConfig)
	}

	cfg := Config{Name: args[0], MaxQueue: defaultMaxQueue}
	haveThreads := false

	for _, arg := range args[1:] {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return Config{}, fmt.Errorf("%w: pool %q: invalid option %q", ErrInvalidConfig, cfg.Name, arg)
		}
		switch key {
		case "threads":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return Config{}, fmt.Errorf("%w: pool %q: threads must be a positive integer", ErrInvalidConfig, cfg.Name)
			}
			cfg.Threads = n
			haveThreads = true
		case "max_queue":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return Config{}, fmt.Errorf("%w: pool %q: max_queue must be a non-negative integer", ErrInvalidConfig, cfg.Name)
			}
			cfg.MaxQueue = n
		default:
			return Config{}, fmt.Errorf("%w: pool %q: unknown option %q", ErrInvalidConfig, cfg.Name, key)
		}
	}

	if !haveThreads {
		return Config{}, fmt.Errorf("%w: pool %q: threads= is required", ErrInvalidConfig, cfg.Name)
	}
	return cfg, nil
}

// defaultPoolConfig returns the auto-configuration applied to the
// reserved "default" pool name when it's referenced without ever being
// declared by a directive.
func defaultPoolConfig() Config {
	return Config{Name: "default", Threads: defaultPoolThreads, MaxQueue: defaultPoolMaxQueue}
}
