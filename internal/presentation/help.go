package presentation

// HelpHeading is the title of the help page.
const HelpHeading = "Bank Statement Analyzer: A Smarter Way to Manage Your Finances"

// HelpItem is one entry of the help page.
type HelpItem struct {
	Title       string
	Description string
}

var HelpItems = []HelpItem{
	{
		Title:       "Comprehensive Financial Overview",
		Description: "Get a snapshot of total income, expenses, net balance, and transaction count, helping users assess their financial status at a glance.",
	},
	{
		Title:       "Categorized Transactions & Insights",
		Description: "Track income and expenses with categorized transactions like food, utilities, and shopping, enabling better spending analysis and budgeting.",
	},
	{
		Title:       "Smart Budgeting & Expense Control",
		Description: "Identify essential vs. discretionary spending, set budgets, and optimize savings based on spending patterns.",
	},
	{
		Title:       "User-Friendly Dashboard & CSV Upload",
		Description: "Easily navigate transaction history, spending insights, and upload bank statements in CSV format for automated analysis.",
	},
	{
		Title:       "Quick & Automated Analysis",
		Description: "Simply upload your CSV file, and the tool will instantly analyze, categorize transactions, and provide a financial summary.",
	},
}
