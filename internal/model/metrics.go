package model

// Metrics 汇总指标
type Metrics struct {
	Quantity      float64 `json:"quantity"`      // 总销量（杯）
	Revenue       float64 `json:"revenue"`       // 总营收
	Profit        float64 `json:"profit"`        // 总毛利
	UnitPrice     float64 `json:"unitPrice"`     // 杯单价
	MarginPct     float64 `json:"marginPct"`     // 毛利率（%）
	DailyQuantity float64 `json:"dailyQuantity"` // 日均杯数
	DailyRevenue  float64 `json:"dailyRevenue"`  // 日均营收
}

// Delta 环比变化
// 除 MarginPoints 为百分点差值外，其余均为相对变化率（0.2 表示 +20%）
type Delta struct {
	Quantity      float64 `json:"quantity"`
	Revenue       float64 `json:"revenue"`
	UnitPrice     float64 `json:"unitPrice"`
	MarginPoints  float64 `json:"marginPoints"`
	DailyQuantity float64 `json:"dailyQuantity"`
	DailyRevenue  float64 `json:"dailyRevenue"`
}

// Quadrant 商品四象限
type Quadrant string

const (
	QuadrantStars         Quadrant = "Stars"
	QuadrantCashCows      Quadrant = "Cash Cows"
	QuadrantQuestionMarks Quadrant = "Question Marks"
	QuadrantDogs          Quadrant = "Dogs"
)

// HealthFlag 商品经营健康标记
type HealthFlag string

const (
	HealthOK          HealthFlag = "healthy"
	HealthLowMargin   HealthFlag = "low_margin"
	HealthLoss        HealthFlag = "loss"
	HealthMissingCost HealthFlag = "missing_cost"
	HealthNoCostData  HealthFlag = "no_cost_data"
)

// Label 健康标记展示文案
func (f HealthFlag) Label() string {
	switch f {
	case HealthOK:
		return "正常"
	case HealthLowMargin:
		return "低毛利"
	case HealthLoss:
		return "亏损"
	case HealthMissingCost:
		return "缺失成本"
	case HealthNoCostData:
		return "--"
	}
	return string(f)
}

// ProductAggregate 按商品汇总
type ProductAggregate struct {
	Product   string  `json:"product"`
	Primary   string  `json:"primary"`
	Secondary string  `json:"secondary"`
	Quantity  float64 `json:"quantity"`
	Revenue   float64 `json:"revenue"`
	Profit    float64 `json:"profit"`
}

// QuadrantResult 四象限分类结果
type QuadrantResult struct {
	Product     string   `json:"product"`
	MarginPct   float64  `json:"marginPct"`
	DailyVolume float64  `json:"dailyVolume"`
	Revenue     float64  `json:"revenue"`
	Quadrant    Quadrant `json:"quadrant"`
}

// QuadrantMatrix 四象限矩阵（含阈值）
type QuadrantMatrix struct {
	MeanMarginPct   float64          `json:"meanMarginPct"`
	MeanDailyVolume float64          `json:"meanDailyVolume"`
	Items           []QuadrantResult `json:"items"`
}

// RankItem 排行条目
type RankItem struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// HeatCell 门店 x 一级分类 日均销量变化
type HeatCell struct {
	Store    string  `json:"store"`
	Category string  `json:"category"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Delta    float64 `json:"delta"` // 相对变化率，上期为 0 时为 0
}

// DetailRow 商品经营明细
type DetailRow struct {
	Product   string     `json:"product"`
	Primary   string     `json:"primary"`
	Secondary string     `json:"secondary"`
	Quantity  float64    `json:"quantity"`
	Revenue   float64    `json:"revenue"`
	Profit    float64    `json:"profit"`
	MarginPct float64    `json:"marginPct"`
	Health    HealthFlag `json:"health"`
	HealthTag string     `json:"healthLabel"`
}

// ProductSearch 搜索透视
type ProductSearch struct {
	Products     []string   `json:"products"`
	Quantity     float64    `json:"quantity"`
	Revenue      float64    `json:"revenue"`
	Contribution float64    `json:"contribution"` // 营收贡献占比（0-1）
	StoreRank    []RankItem `json:"storeRank"`
}
