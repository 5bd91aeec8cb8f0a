package controllers

import (
	"sync"

	"stockbot/src/config"
	"stockbot/src/scheduler"
	"stockbot/src/services"
)

type Controller struct {
	Config   *config.Config
	Services *services.Services

	SchedulerMutex sync.Mutex
	Schedulers     map[string]*scheduler.ScheduledTask
	specs          map[string]string
}

func NewController(cfg *config.Config, svc *services.Services) *Controller {
	return &Controller{
		Config:     cfg,
		Services:   svc,
		Schedulers: map[string]*scheduler.ScheduledTask{},
		specs:      map[string]string{},
	}
}

func (c *Controller) GetSchedulers() map[string]*scheduler.ScheduledTask {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()
	out := make(map[string]*scheduler.ScheduledTask, len(c.Schedulers))
	for name, task := range c.Schedulers {
		out[name] = task
	}
	return out
}
