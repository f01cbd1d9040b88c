package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/sivakirlampalli/Ecommerce-Website/internal/cart"
	"github.com/sivakirlampalli/Ecommerce-Website/internal/catalog"
	"github.com/sivakirlampalli/Ecommerce-Website/internal/notify"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/enums"
)

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func printProducts(w io.Writer, products []catalog.Product) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tBRAND\tPRICE\tSTOCK")
	for _, p := range products {
		stock := fmt.Sprintf("%d", p.StockQuantity)
		if !p.InStock() {
			stock = "out of stock"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, p.Brand, money(p.Price), stock)
	}
	_ = tw.Flush()
}

func printProduct(w io.Writer, p catalog.Product) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", p.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "Category:\t%s\n", p.Category)
	fmt.Fprintf(tw, "Brand:\t%s\n", p.Brand)
	fmt.Fprintf(tw, "Ages:\t%s\n", p.AgeRange)
	fmt.Fprintf(tw, "Price:\t%s\n", money(p.Price))
	fmt.Fprintf(tw, "In stock:\t%d\n", p.StockQuantity)
	fmt.Fprintf(tw, "Description:\t%s\n", p.Description)
	_ = tw.Flush()
}

func printCart(w io.Writer, items []cart.Item, totalItems int, totalPrice decimal.Decimal) {
	if len(items) == 0 {
		fmt.Fprintln(w, "Your cart is empty")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tPRODUCT\tQTY\tPRICE\tSUBTOTAL")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			item.ID, item.Product.Name, item.Quantity, money(item.Product.Price), money(item.Subtotal()))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "Items: %d  Total: %s\n", totalItems, money(totalPrice))
}

func printNotices(w io.Writer, notices []notify.Notification) {
	for _, n := range notices {
		fmt.Fprintf(w, "%s %s\n", noticeMarker(n.Level), n.Message)
	}
}

func noticeMarker(level enums.NotificationLevel) string {
	switch level {
	case enums.NotificationLevelSuccess:
		return "[ok]"
	case enums.NotificationLevelError:
		return "[error]"
	default:
		return "[info]"
	}
}
