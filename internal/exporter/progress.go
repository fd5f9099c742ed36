package exporter

// ProgressEvent 导出进度
type ProgressEvent struct {
	Percent int    `json:"percent"`
	Stage   string `json:"stage"`
}

// detailProgressStep 明细表每写入多少行上报一次
const detailProgressStep = 200

// progressReporter 包装导出进度回调：百分比截断到 0-100，且只增不减，
// 相同百分比不会重复上报
type progressReporter struct {
	fn   func(ProgressEvent)
	last int
}

func newProgressReporter(fn func(ProgressEvent)) *progressReporter {
	return &progressReporter{fn: fn, last: -1}
}

func (p *progressReporter) report(percent int, stage string) {
	if p == nil || p.fn == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if percent <= p.last {
		return
	}
	p.last = percent
	p.fn(ProgressEvent{Percent: percent, Stage: stage})
}

// span 将 [0,total] 的完成量映射到 [from,to] 区间
func (p *progressReporter) span(from, to, done, total int, stage string) {
	if total <= 0 {
		p.report(to, stage)
		return
	}
	p.report(from+(to-from)*done/total, stage)
}
