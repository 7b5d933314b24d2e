package utils

import (
	"bytes"
	"context"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/M5Csoftware/m5-server-sub003/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

func formatContacts(mobile []models.MobileEntry) string {
	contacts := ""
	for _, m := range mobile {
		contacts += m.Number + "(" + m.Label + "), "
	}
	if len(contacts) > 2 {
		contacts = contacts[:len(contacts)-2]
	}
	return contacts
}

// GenerateInvoicePDF renders the invoice template for one cut invoice.
func GenerateInvoicePDF(branch *models.BranchProfile, account *models.CustomerAccount, inv *models.Invoice) ([]byte, error) {
	tmpl, err := template.ParseFiles("templates/invoice_template.html")
	if err != nil {
		return nil, err
	}

	data := models.InvoicePDFData{
		Branch:     branch,
		Invoice:    inv,
		Account:    account,
		Contacts:   formatContacts(branch.Mobile),
		Date:       inv.CreatedAt.Format("02-Jan-2006"),
		Period:     inv.FromDate.Format("02-Jan-2006") + " to " + inv.ToDate.Format("02-Jan-2006"),
		TotalWords: NumberToCurrencyWords(inv.Summary.GrandTotal),
		LineCount:  len(inv.Shipments),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return renderPDF(buf.String(), "invoice")
}

// GenerateRunManifestPDF renders one manifest copy per title, each kept whole
// on the page.
func GenerateRunManifestPDF(branch *models.BranchProfile, run *models.Run, bags []*models.Bag, summary *models.RunSummary) ([]byte, error) {
	tmpl, err := template.ParseFiles("templates/manifest_template.html")
	if err != nil {
		return nil, err
	}

	formattedDate := "-"
	if !run.DepartureDate.IsZero() {
		formattedDate = run.DepartureDate.Format("02-Jan-2006")
	}

	copyTitles := []string{"Carrier Copy", "Origin Copy"}

	var fullHTML bytes.Buffer
	for _, title := range copyTitles {
		data := models.ManifestPDFData{
			Branch:    branch,
			Run:       run,
			Bags:      bags,
			Contacts:  formatContacts(branch.Mobile),
			Date:      formattedDate,
			Summary:   *summary,
			CopyTitle: title,
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, err
		}

		fullHTML.WriteString("<div class='manifest-copy'>")
		fullHTML.Write(buf.Bytes())
		fullHTML.WriteString("</div>")
	}
	return renderPDF(fullHTML.String(), "manifest")
}

// renderPDF wraps the body in A4 page CSS and prints it with headless Chrome.
func renderPDF(body, kind string) ([]byte, error) {
	finalHTML := `
		<!DOCTYPE html>
		<html>
		<head>
		<meta charset="UTF-8">
		<style>
		@page {
			size: A4;
			margin: 20px;
		}
		body {
			font-family: Arial, Helvetica, sans-serif;
			font-size: 12px;
			margin: 0;
			padding: 0;
		}
		.manifest-copy {
			page-break-inside: avoid;
			border: none;
		}
		</style>
		</head>
		<body>` + body + `</body></html>`

	tmpDir := os.TempDir()
	tmpHTML := filepath.Join(tmpDir, kind+"_"+time.Now().Format("20060102150405")+".html")
	if err := os.WriteFile(tmpHTML, []byte(finalHTML), 0644); err != nil {
		return nil, err
	}
	defer os.Remove(tmpHTML)

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuf []byte
	fileURL := "file://" + tmpHTML

	err := chromedp.Run(ctx,
		chromedp.Navigate(fileURL),
		chromedp.Sleep(1*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).  // A4 width
				WithPaperHeight(11.7). // A4 height
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, err
	}

	return pdfBuf, nil
}
