package models

type InvoicePDFData struct {
	Branch     *BranchProfile // issuing branch header
	Invoice    *Invoice
	Account    *CustomerAccount
	Contacts   string // formatted mobile numbers
	Date       string // formatted invoice date
	Period     string // formatted billing period
	TotalWords string
	LineCount  int
}

type ManifestPDFData struct {
	Branch    *BranchProfile
	Run       *Run
	Bags      []*Bag
	Contacts  string
	Date      string // formatted departure date
	Summary   RunSummary
	CopyTitle string
}
