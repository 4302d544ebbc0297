package storage

// Storage keys for every persisted collection and setting. All keys carry
// the app_ prefix to namespace them from other consumers of the same store.
const (
	KeyTransactions   = "app_transactions"
	KeyProducts       = "app_products"
	KeyDebts          = "app_debts"
	KeyCategoryConfig = "app_category_config"
	KeyCurrencyCode   = "app_currency_code"
	KeyTheme          = "app_theme"

	// Reserved, currently unused.
	KeyBills = "app_bills"
)
