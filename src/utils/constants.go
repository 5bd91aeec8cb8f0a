package utils

const ShortDashDateLayout = "2006-01-02"

// DefaultSymbols is the ticker universe refreshed by the scheduler when no symbols file is configured.
var DefaultSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "META", "NFLX", "NVDA", "TSLA", "ORCL", "CRM", "ADBE", "INTC",
	"AMD", "QCOM", "CSCO", "IBM", "NOW", "SNOW", "PLTR", "CRWD", "PANW", "FTNT", "OKTA", "ZM", "DOCU",
	"TWLO", "PYPL", "UBER", "LYFT", "DASH", "ABNB", "SPOT", "SNAP", "PINS", "ROKU", "JPM", "BAC",
	"WFC", "GS", "MS", "C", "AXP", "V", "MA", "COF", "SCHW", "BLK", "SPGI", "MCO", "ICE", "CME", "CB",
	"AON", "MMC", "JNJ", "PFE", "UNH", "ABBV", "MRK", "TMO", "ABT", "DHR", "BMY", "AMGN", "GILD",
	"BIIB", "REGN", "VRTX", "ISRG", "DXCM", "ILMN", "MRNA", "BNTX", "ZTS", "WMT", "HD", "PG", "KO",
	"PEP", "MCD", "SBUX", "NKE", "TGT", "LOW", "COST", "TJX", "BKNG", "EXPE", "MAR", "HLT", "DIS",
	"CMCSA", "XOM", "CVX", "COP", "EOG", "SLB", "OXY", "KMI", "WMB", "NEE", "DUK", "SO", "D", "EXC",
	"AEP", "SRE", "BA", "CAT", "GE", "HON", "MMM", "UPS", "FDX", "LMT", "RTX", "NOC", "GD", "DE",
	"EMR", "ITW", "ETN", "PH", "DOV", "ROK", "CMI", "PCAR", "F", "GM",
}

// ChartColors is the palette used for chart series.
var ChartColors = []string{
	"#80b3ff", // Light Blue
	"#a3d977", // Light Green
	"#ffa366", // Light Orange
	"#ff8080", // Light Red
	"#c285ff", // Light Purple
}

// GetChartColor returns a color from the chart color palette, cycling when the index exceeds it.
func GetChartColor(index int) string {
	return ChartColors[index%len(ChartColors)]
}
