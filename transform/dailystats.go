package transform

// transformDailyStats rolls the committed toques_daily table up to one row
// per (tenant, date). It runs after the touch transform has committed, so
// the rollup never observes uncommitted state.
func (e *Engine) transformDailyStats() (int, error) {
	stats, err := e.norm.AggregateTouchDaily(e.tenantID)
	if err != nil {
		return 0, err
	}
	return e.norm.UpsertDailyStats(stats)
}
