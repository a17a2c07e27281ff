package threadpool

import (
	"fmt"
	"sync"

	"github.com/nginxcore/corert/corelog"
)

// ProcessRole mirrors nginx's master/worker/single process distinction;
// pool initialization is a no-op outside RoleWorker/RoleSingle.
type ProcessRole int

const (
	RoleMaster ProcessRole = iota
	RoleWorker
	RoleSingle
)

// Registry holds pool configuration collected from directives and the
// pools actually started in this process.
//
// Grounded on ngx_thread_pool_add/_get/_init_conf and the process-role
// guard in ngx_thread_pool_init_worker/_exit_worker.
type Registry struct {
	log  corelog.Logger
	role ProcessRole

	mu    sync.Mutex
	cfgs  map[string]Config
	pools map[string]*Pool
}

// NewRegistry returns an empty Registry for the given process role.
func NewRegistry(role ProcessRole, log corelog.Logger) *Registry {
	if log == nil {
		log = corelog.NoOp()
	}
	return &Registry{
		role:  role,
		log:   log,
		cfgs:  make(map[string]Config),
		pools: make(map[string]*Pool),
	}
}

// Add records a pool directive's configuration, to be realized into a
// running Pool by InitWorker or on first Get.
//
// Grounded on ngx_thread_pool_add.
func (r *Registry) Add(args []string) error {
	cfg, err := ParseDirective(args)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfgs[cfg.Name] = cfg
	return nil
}

// Get returns the named pool, starting it on first use. The reserved
// "default" pool is auto-configured if it was never added.
//
// Grounded on ngx_thread_pool_get.
func (r *Registry) Get(name string) (*Pool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.pools[name]; ok {
		return p, nil
	}

	cfg, ok := r.cfgs[name]
	if !ok {
		if name != "default" {
			return nil, fmt.Errorf("%w: %q", ErrPoolNotConfigured, name)
		}
		cfg = defaultPoolConfig()
	}

	p, err := New(cfg, r.log)
	if err != nil {
		return nil, err
	}
	r.pools[name] = p
	return p, nil
}

// InitWorker starts every pool configured via Add. Outside
// RoleWorker/RoleSingle it is a no-op, matching ngx_thread_pool_init_worker's
// process-role guard: pools only ever run in a worker (or single)
// process, never in the master.
func (r *Registry) InitWorker() error {
	if r.role != RoleWorker && r.role != RoleSingle {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for name, cfg := range r.cfgs {
		if _, ok := r.pools[name]; ok {
			continue
		}
		p, err := New(cfg, r.log)
		if err != nil {
			return fmt.Errorf("threadpool: starting pool %q: %w", name, err)
		}
		r.pools[name] = p
	}
	return nil
}

// ExitWorker closes every running pool, waiting for all workers to
// drain their exit tasks.
//
// Grounded on ngx_thread_pool_exit_worker.
func (r *Registry) ExitWorker() {
	r.mu.Lock()
	pools := make([]*Pool, 0, len(r.pools))
	for name, p := range r.pools {
		pools = append(pools, p)
		delete(r.pools, name)
	}
	r.mu.Unlock()

	for _, p := range pools {
		p.Close()
	}
}
