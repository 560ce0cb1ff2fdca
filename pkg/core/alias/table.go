package alias

// MetricID identifies one of the canonical financial metrics every source
// document is normalized into.
type MetricID string

const (
	Revenue        MetricID = "revenue"
	EBIT           MetricID = "ebit"
	NetIncome      MetricID = "netIncome"
	Depreciation   MetricID = "depreciation"
	Capex          MetricID = "capex"
	WorkingCapital MetricID = "workingCapital"

	// Extended metrics. Not required for a forecast, but the reconciler's
	// estimator chain and the ratio layer read them when present.
	EBITDA            MetricID = "ebitda"
	TotalAssets       MetricID = "totalAssets"
	TotalLiabilities  MetricID = "totalLiabilities"
	CurrentAssets     MetricID = "currentAssets"
	CurrentLiability  MetricID = "currentLiabilities"
	FixedAssets       MetricID = "fixedAssets"
	PriorFixedAssets  MetricID = "priorFixedAssets"
	OperatingCashFlow MetricID = "operatingCashFlow"
	InvestingCashFlow MetricID = "investingCashFlow"
	FinancingCashFlow MetricID = "financingCashFlow"
	ShareholderEquity MetricID = "shareholdersEquity"
)

// RequiredMetrics are the metrics a reconciliation must produce, in reporting
// order. A record that cannot fill all six (directly or via estimators) fails.
var RequiredMetrics = []MetricID{Revenue, EBIT, NetIncome, Depreciation, Capex, WorkingCapital}

// Entry binds a canonical metric to its known aliases. Order matters twice:
// the table is scanned in declaration order (first metric whose alias matches
// wins), and within an entry aliases are tried in declaration order.
type Entry struct {
	Metric  MetricID
	Aliases []string
}

// Table is the static alias table. It merges the Chinese statement labels and
// the English labels seen across the source corpus. Extending it is fine;
// mutating it per request is not.
var Table = []Entry{
	{Revenue, []string{"营业总收入", "营业收入", "主营业务收入", "operating_revenue", "total_revenue", "revenue", "sales"}},
	{EBIT, []string{"息税前利润", "营业利润", "operating_income", "operating_profit", "operatingincome", "operatingprofit", "ebit"}},
	{NetIncome, []string{"归属于母公司股东的净利润", "归属于母公司所有者的净利润", "净利润", "net_income", "netincome", "net_profit", "netprofit", "profit_after_tax"}},
	{Depreciation, []string{"折旧与摊销", "折旧摊销", "折旧", "depreciation_amortization", "dep_amort", "depreciation"}},
	{Capex, []string{
		"购建固定资产、无形资产和其他长期资产支付的现金",
		"购建固定资产_无形资产和其他长期资产支付的现金",
		"资本支出", "capital_expenditure", "capital_spending", "capitalexpenditures", "capex",
	}},
	{WorkingCapital, []string{"营运资本", "营运资金", "working_capital", "workingcapital", "net_working_capital"}},

	{EBITDA, []string{"ebitda"}},
	{TotalAssets, []string{"资产总计", "总资产", "total_assets"}},
	{TotalLiabilities, []string{"负债合计", "总负债", "total_liabilities"}},
	{CurrentAssets, []string{"流动资产合计", "流动资产总计", "流动资产", "current_assets", "currentassets"}},
	{CurrentLiability, []string{"流动负债合计", "流动负债总计", "流动负债", "current_liabilities", "currentliabilities"}},
	{PriorFixedAssets, []string{"上期固定资产", "prior_fixed_assets"}},
	{FixedAssets, []string{"固定资产", "fixed_assets", "fixedassets"}},
	{OperatingCashFlow, []string{"经营活动产生的现金流量净额", "经营现金流", "operating_cash_flow", "cash_from_operations"}},
	{InvestingCashFlow, []string{"投资活动产生的现金流量净额", "投资现金流", "investing_cash_flow"}},
	{FinancingCashFlow, []string{"筹资活动产生的现金流量净额", "筹资现金流", "financing_cash_flow"}},
	{ShareholderEquity, []string{"股东权益", "所有者权益", "shareholders_equity", "shareholders'_equity"}},
}
