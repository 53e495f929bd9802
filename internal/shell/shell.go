// Package shell drives the interactive session: login gate, menu dispatch,
// prompting and the persistence flush after every command. It reads from an
// injected reader and writes to an injected writer so the whole loop can be
// exercised with scripted input.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"storekeeper/m/internal/auth"
	"storekeeper/m/internal/persist"
	"storekeeper/m/internal/store"
	"storekeeper/m/pkg/logger"
)

// Shell owns one interactive session over a store.
type Shell struct {
	store    *store.Store
	gateway  *persist.Gateway
	auth     *auth.Authenticator
	scanner  *bufio.Scanner
	out      io.Writer
	validate *validator.Validate
	sess     *auth.Session

	// raw is kept to detect a real terminal for no-echo password entry.
	raw io.Reader
}

// New constructs a shell over the given collaborators.
func New(st *store.Store, gateway *persist.Gateway, authenticator *auth.Authenticator, in io.Reader, out io.Writer) *Shell {
	return &Shell{
		store:    st,
		gateway:  gateway,
		auth:     authenticator,
		scanner:  bufio.NewScanner(in),
		out:      out,
		validate: validator.New(),
		raw:      in,
	}
}

// Run executes the session: login gate, then the menu loop until exit,
// logout failure or end of input. A failed login at start or after logout
// ends the session by design.
func (sh *Shell) Run() error {
	if !sh.login() {
		return nil
	}

	for {
		fmt.Fprintln(sh.out, "\n--- Store Management Menu ---")
		fmt.Fprintln(sh.out, "1. Add Product")
		fmt.Fprintln(sh.out, "2. Edit Product")
		fmt.Fprintln(sh.out, "3. Delete Product")
		fmt.Fprintln(sh.out, "4. List Inventory")
		fmt.Fprintln(sh.out, "5. Record Sale")
		fmt.Fprintln(sh.out, "6. Record Purchase")
		fmt.Fprintln(sh.out, "7. Generate Reports")
		fmt.Fprintln(sh.out, "8. Logout")
		fmt.Fprintln(sh.out, "9. Exit")
		fmt.Fprint(sh.out, "Choose an option: ")

		choice, ok := sh.readLine()
		if !ok {
			return nil
		}

		switch choice {
		case "1":
			sh.addProduct()
		case "2":
			sh.editProduct()
		case "3":
			sh.deleteProduct()
		case "4":
			sh.listInventory()
		case "5":
			sh.recordSale()
		case "6":
			sh.recordPurchase()
		case "7":
			sh.generateReports()
		case "8":
			sh.sess = nil
			fmt.Fprintln(sh.out, "Logged out.")
			if !sh.login() {
				return nil
			}
		case "9":
			fmt.Fprintln(sh.out, "Exiting...")
			return nil
		default:
			fmt.Fprintln(sh.out, "Invalid option.")
		}

		sh.flush()
	}
}

// flush persists the full store state. Failures warn and the session
// continues; the prior on-disk state may be stale until the next command.
func (sh *Shell) flush() {
	inventory, sales, purchases := sh.store.Snapshot()
	if err := sh.gateway.Save(inventory, sales, purchases); err != nil {
		fmt.Fprintf(sh.out, "Warning: Failed to save data: %v\n", err)
		logger.Error().Err(err).Msg("persistence flush failed")
	}
}

func (sh *Shell) login() bool {
	fmt.Fprintln(sh.out, "Enter password:")
	password, ok := sh.readPassword()
	if !ok {
		return false
	}
	sess, err := sh.auth.Login(password)
	if err != nil {
		fmt.Fprintln(sh.out, "Authentication failed.")
		logger.Warn().Msg("failed login attempt")
		return false
	}
	sh.sess = sess
	fmt.Fprintln(sh.out, "Authentication successful!")
	return true
}

type productForm struct {
	Name        string  `validate:"required"`
	Description string  `validate:"required"`
	Price       float64 `validate:"required,gt=0"`
	Quantity    int64   `validate:"min=0"`
}

type movementForm struct {
	Name     string  `validate:"required"`
	Quantity int64   `validate:"min=0"`
	Price    float64 `validate:"required,gt=0"`
}

func (sh *Shell) addProduct() {
	fmt.Fprintln(sh.out, "Adding new product.")
	name, ok := sh.promptNonEmpty("Product name: ")
	if !ok {
		return
	}
	description, ok := sh.promptNonEmpty("Description: ")
	if !ok {
		return
	}
	price, ok := sh.promptPositiveDecimal("Selling price: ")
	if !ok {
		return
	}
	quantity, ok := sh.promptQuantity("Quantity: ")
	if !ok {
		return
	}

	form := productForm{Name: name, Description: description, Quantity: quantity}
	form.Price, _ = price.Float64()
	if err := sh.validate.Struct(form); err != nil {
		fmt.Fprintln(sh.out, "Invalid input.")
		return
	}

	if err := sh.store.AddProduct(sh.sess, name, description, price, quantity); err != nil {
		sh.report(err)
		return
	}
	fmt.Fprintln(sh.out, "Product added.")
}

func (sh *Shell) editProduct() {
	name, ok := sh.promptNonEmpty("Enter product name to edit: ")
	if !ok {
		return
	}
	fmt.Fprintf(sh.out, "Editing product: %s\n", name)
	description, ok := sh.promptNonEmpty("New description: ")
	if !ok {
		return
	}
	price, ok := sh.promptPositiveDecimal("New selling price: ")
	if !ok {
		return
	}
	quantity, ok := sh.promptQuantity("New quantity: ")
	if !ok {
		return
	}

	if err := sh.store.EditProduct(sh.sess, name, description, price, quantity); err != nil {
		sh.report(err)
		return
	}
	fmt.Fprintln(sh.out, "Product updated.")
}

func (sh *Shell) deleteProduct() {
	name, ok := sh.promptNonEmpty("Enter product name to delete: ")
	if !ok {
		return
	}
	if err := sh.store.DeleteProduct(sh.sess, name); err != nil {
		sh.report(err)
		return
	}
	fmt.Fprintf(sh.out, "Product '%s' deleted.\n", name)
}

func (sh *Shell) listInventory() {
	fmt.Fprintln(sh.out, "\nInventory:")
	products := sh.store.ListInventory()
	if len(products) == 0 {
		fmt.Fprintln(sh.out, "No products found.")
		return
	}
	for i := range products {
		p := &products[i]
		fmt.Fprintf(sh.out, "%s: %s, Price: $%s, Qty: %d, Avg Cost: $%s\n",
			p.Name, p.Description, p.Price.StringFixed(2), p.Quantity, p.AverageCost().StringFixed(2))
	}
}

func (sh *Shell) recordSale() {
	form, ok := sh.promptMovement("Product sold: ", "Quantity sold: ", "Sale price per unit: ")
	if !ok {
		return
	}
	sale, err := sh.store.RecordSale(sh.sess, form.name, form.quantity, form.price)
	if err != nil {
		sh.report(err)
		return
	}
	fmt.Fprintf(sh.out, "Sale recorded. Profit: $%s\n", sale.Profit.StringFixed(2))
}

func (sh *Shell) recordPurchase() {
	form, ok := sh.promptMovement("Product purchased: ", "Quantity purchased: ", "Purchase price per unit: ")
	if !ok {
		return
	}
	if _, err := sh.store.RecordPurchase(sh.sess, form.name, form.quantity, form.price); err != nil {
		sh.report(err)
		return
	}
	fmt.Fprintln(sh.out, "Purchase recorded.")
}

func (sh *Shell) generateReports() {
	report := sh.store.Reports()

	fmt.Fprintln(sh.out, "\n----- Sales Report -----")
	if len(report.Sales) == 0 {
		fmt.Fprintln(sh.out, "No sales recorded.")
	} else {
		for i := range report.Sales {
			s := &report.Sales[i]
			fmt.Fprintf(sh.out, "Sold %d units of %s at $%s each. Profit: $%s\n",
				s.Quantity, s.ProductName, s.SalePrice.StringFixed(2), s.Profit.StringFixed(2))
		}
		fmt.Fprintf(sh.out, "Total Sales: $%s\n", report.TotalRevenue.StringFixed(2))
		fmt.Fprintf(sh.out, "Total Profit: $%s\n", report.TotalProfit.StringFixed(2))
	}

	fmt.Fprintln(sh.out, "\n----- Purchase Report -----")
	if len(report.Purchases) == 0 {
		fmt.Fprintln(sh.out, "No purchases recorded.")
	} else {
		for i := range report.Purchases {
			p := &report.Purchases[i]
			fmt.Fprintf(sh.out, "Purchased %d units of %s at $%s each\n",
				p.Quantity, p.ProductName, p.PurchasePrice.StringFixed(2))
		}
		fmt.Fprintf(sh.out, "Total Purchase Cost: $%s\n", report.TotalPurchaseCost.StringFixed(2))
	}

	fmt.Fprintln(sh.out, "\n----- Inventory Report -----")
	sh.listInventory()
}

// report maps a store error to the operator-facing line. Every error kind
// is recoverable; nothing here ends the session.
func (sh *Shell) report(err error) {
	switch {
	case errors.Is(err, store.ErrDuplicateProduct):
		fmt.Fprintln(sh.out, "Product already exists. Use edit instead.")
	case errors.Is(err, store.ErrProductNotFound):
		fmt.Fprintln(sh.out, "Product not found.")
	case errors.Is(err, store.ErrInsufficientStock):
		fmt.Fprintln(sh.out, "Not enough stock.")
	case errors.Is(err, store.ErrAccessDenied):
		fmt.Fprintln(sh.out, "Access denied. Please authenticate first.")
	default:
		fmt.Fprintf(sh.out, "Operation failed: %v\n", err)
	}
}

type movement struct {
	name     string
	quantity int64
	price    decimal.Decimal
}

func (sh *Shell) promptMovement(namePrompt, qtyPrompt, pricePrompt string) (movement, bool) {
	name, ok := sh.promptNonEmpty(namePrompt)
	if !ok {
		return movement{}, false
	}
	quantity, ok := sh.promptQuantity(qtyPrompt)
	if !ok {
		return movement{}, false
	}
	price, ok := sh.promptPositiveDecimal(pricePrompt)
	if !ok {
		return movement{}, false
	}

	form := movementForm{Name: name, Quantity: quantity}
	form.Price, _ = price.Float64()
	if err := sh.validate.Struct(form); err != nil {
		fmt.Fprintln(sh.out, "Invalid input.")
		return movement{}, false
	}
	return movement{name: name, quantity: quantity, price: price}, true
}

// readLine returns the next trimmed input line; false means end of input.
func (sh *Shell) readLine() (string, bool) {
	if !sh.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(sh.scanner.Text()), true
}

// readPassword suppresses echo when the session runs on a real terminal;
// scripted input falls back to a plain line read.
func (sh *Shell) readPassword() (string, bool) {
	if f, ok := sh.raw.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(sh.out)
		if err != nil {
			return "", false
		}
		return strings.TrimSpace(string(raw)), true
	}
	return sh.readLine()
}

func (sh *Shell) promptNonEmpty(prompt string) (string, bool) {
	for {
		fmt.Fprint(sh.out, prompt)
		input, ok := sh.readLine()
		if !ok {
			return "", false
		}
		if input != "" {
			return input, true
		}
		fmt.Fprintln(sh.out, "Input cannot be empty. Please try again.")
	}
}

func (sh *Shell) promptPositiveDecimal(prompt string) (decimal.Decimal, bool) {
	for {
		fmt.Fprint(sh.out, prompt)
		input, ok := sh.readLine()
		if !ok {
			return decimal.Zero, false
		}
		value, err := decimal.NewFromString(input)
		if err == nil && value.IsPositive() {
			return value, true
		}
		fmt.Fprintln(sh.out, "Please enter a valid positive number.")
	}
}

func (sh *Shell) promptQuantity(prompt string) (int64, bool) {
	for {
		fmt.Fprint(sh.out, prompt)
		input, ok := sh.readLine()
		if !ok {
			return 0, false
		}
		value, err := strconv.ParseInt(input, 10, 64)
		if err == nil && value >= 0 {
			return value, true
		}
		fmt.Fprintln(sh.out, "Please enter a valid positive integer.")
	}
}
