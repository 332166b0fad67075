package linkflow

// AssetType is one entry on the first wizard screen. Only linkable types
// continue to the broker link path.
type AssetType struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Linkable bool   `json:"linkable"`
}

// Broker is one linkable brokerage.
type Broker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BrokerCategory groups brokers on the selection screen.
type BrokerCategory struct {
	Slug    string   `json:"slug"`
	Name    string   `json:"name"`
	Brokers []Broker `json:"brokers"`
}

// Catalog is the full option set the wizard can offer, independent of any
// flow's current position.
type Catalog struct {
	AssetTypes       []AssetType      `json:"assetTypes"`
	BrokerCategories []BrokerCategory `json:"brokerCategories"`
}

// DefaultCatalog returns the built-in asset type and broker catalog.
func DefaultCatalog() Catalog {
	return Catalog{AssetTypes: assetTypes, BrokerCategories: brokerCategories}
}

func (c BrokerCategory) hasBroker(id string) bool {
	for _, b := range c.Brokers {
		if b.ID == id {
			return true
		}
	}
	return false
}

var assetTypes = []AssetType{
	{Slug: "real-estate", Name: "Real estate"},
	{Slug: "vehicles", Name: "Vehicles"},
	{Slug: "collectibles", Name: "Collectibles"},
	{Slug: "cash", Name: "Cash"},
	{Slug: "investments", Name: "Investments", Linkable: true},
}

// Broker ids match the slugs SnapTrade accepts as a portal pre-selection.
var brokerCategories = []BrokerCategory{
	{
		Slug: "us-brokerages",
		Name: "US brokerages",
		Brokers: []Broker{
			{ID: "ALPACA", Name: "Alpaca"},
			{ID: "ROBINHOOD", Name: "Robinhood"},
			{ID: "FIDELITY", Name: "Fidelity"},
			{ID: "SCHWAB", Name: "Charles Schwab"},
		},
	},
	{
		Slug: "international",
		Name: "International brokerages",
		Brokers: []Broker{
			{ID: "QUESTRADE", Name: "Questrade"},
			{ID: "TRADING212", Name: "Trading 212"},
			{ID: "DEGIRO", Name: "DEGIRO"},
		},
	},
	{
		Slug: "crypto",
		Name: "Crypto exchanges",
		Brokers: []Broker{
			{ID: "COINBASE", Name: "Coinbase"},
			{ID: "KRAKEN", Name: "Kraken"},
			{ID: "BINANCE", Name: "Binance"},
		},
	},
}

func assetTypeBySlug(slug string) (AssetType, bool) {
	for _, t := range assetTypes {
		if t.Slug == slug {
			return t, true
		}
	}
	return AssetType{}, false
}

func brokerCategoryBySlug(slug string) (BrokerCategory, bool) {
	for _, c := range brokerCategories {
		if c.Slug == slug {
			return c, true
		}
	}
	return BrokerCategory{}, false
}
