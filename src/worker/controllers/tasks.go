package controllers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"stockbot/src/scheduler"
	"stockbot/src/schemas"
	"stockbot/src/utils"

	"github.com/sirupsen/logrus"
)

const (
	PriceRefreshTask = "price-refresh"

	// Upper bound for one scheduled refresh and the role recompute that follows it.
	taskTimeout = 20 * time.Minute
)

// Symbols returns the tracked universe: the configured CSV when set, the built in list otherwise.
func (c *Controller) Symbols() ([]string, error) {
	if c.Config.Market.SymbolsFile == "" {
		return utils.DefaultSymbols, nil
	}
	symbols, err := utils.LoadSymbolsCSV(c.Config.Market.SymbolsFile)
	if err != nil {
		return nil, fmt.Errorf("loading symbols: %w", err)
	}
	return symbols, nil
}

// RefreshPrices stores a fresh quote for every tracked symbol.
func (c *Controller) RefreshPrices(ctx context.Context) (*schemas.PriceRefreshResult, error) {
	symbols, err := c.Symbols()
	if err != nil {
		return nil, err
	}
	return c.Services.Prices.RefreshPrices(ctx, symbols)
}

// RecomputeRoles re-evaluates the worth roles of every configured guild.
func (c *Controller) RecomputeRoles(ctx context.Context) ([]schemas.RoleRecomputeResult, error) {
	return c.Services.Roles.AssignAllGuilds(ctx)
}

// runRefreshCycle is the scheduled job: prices first so roles see the new quotes.
func (c *Controller) runRefreshCycle(ctx context.Context) error {
	logger := utils.LoggerFromContext(ctx)

	result, err := c.RefreshPrices(ctx)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"requested": result.Requested,
		"updated":   result.Updated,
		"failed":    len(result.Failed),
	}).Info("prices refreshed")

	if _, err := c.RecomputeRoles(ctx); err != nil {
		return fmt.Errorf("recomputing roles: %w", err)
	}
	return nil
}

// Start schedules the periodic refresh in the market timezone.
func (c *Controller) Start(ctx context.Context) error {
	return c.Schedule(ctx, PriceRefreshTask, c.Config.Market.RefreshCron, c.runRefreshCycle)
}

// Schedule handles the scheduling and re-scheduling of a named task.
func (c *Controller) Schedule(ctx context.Context, name, cronSpec string, taskFunc func(context.Context) error) error {
	logger := utils.LoggerFromContext(ctx)

	c.SchedulerMutex.Lock()
	if existingTask, exists := c.Schedulers[name]; exists {
		existingTask.Cancel()
		delete(c.Schedulers, name)
		delete(c.specs, name)
	}
	c.SchedulerMutex.Unlock()

	newTask, err := scheduler.NewScheduledTask(cronSpec, c.Config.Market.Location(), func() {
		runCtx, cancel := context.WithTimeout(utils.WithLogger(context.Background(), logger), taskTimeout)
		defer cancel()
		if err := taskFunc(runCtx); err != nil {
			logger.WithField("task", name).Errorf("scheduled task failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling %s: %w", name, err)
	}

	c.SchedulerMutex.Lock()
	c.Schedulers[name] = newTask
	c.specs[name] = cronSpec
	c.SchedulerMutex.Unlock()

	logger.WithFields(logrus.Fields{"task": name, "next": newTask.Next()}).Info("task scheduled")
	return nil
}

// ListSchedules reports every scheduled task and its next run.
func (c *Controller) ListSchedules() []schemas.ScheduleResponse {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()

	out := make([]schemas.ScheduleResponse, 0, len(c.Schedulers))
	for name, task := range c.Schedulers {
		out = append(out, schemas.ScheduleResponse{Task: name, Spec: c.specs[name], Next: task.Next()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Task < out[j].Task })
	return out
}

// Stop cancels every scheduled task.
func (c *Controller) Stop() {
	c.SchedulerMutex.Lock()
	defer c.SchedulerMutex.Unlock()
	for name, task := range c.Schedulers {
		task.Cancel()
		delete(c.Schedulers, name)
		delete(c.specs, name)
	}
}
