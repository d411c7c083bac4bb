// Command kicksctl is a terminal client for the store: browse, keep a cart,
// check out, follow orders, and run the back office.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"

	"kicks/internal/client/apiclient"
	"kicks/internal/client/cart"
	"kicks/internal/client/clientstore"
	"kicks/internal/client/orderview"
	"kicks/internal/client/session"
	"kicks/internal/client/timers"
	"kicks/internal/domain"
	"kicks/internal/otp"
	"kicks/internal/storage"
)

const usage = `usage: kicksctl <command> [args]

storefront:
  products [-category C] [-q text]     list the catalogue
  product <id>                         show one product and its variants
  hero [-watch]                        list carousel slides, or cycle them
  register <name> <email> <password>   create an account (code is emailed)
  verify <email> <code>                confirm the emailed code and sign in
  resend <email>                       send a new code
  login <email> <password>             sign in
  logout                               sign out
  whoami                               show the signed-in shopper
  cart [add|set|rm|clear] ...          show or change the cart
  checkout [-address-id ID | -line1 .. -city .. -state .. -postal ..]
  orders                               list your orders
  order <id>                           show one order and its history

back office:
  admin login <email> <password>
  admin logout
  admin dashboard
  admin orders
  admin status <order-id> <status> [note]
  admin payment <order-id> <status>
  admin settings [-gst N] [-delivery N] [-low-stock N]
  admin users

env: KICKS_API_URL (default http://localhost:5000/api), KICKS_STATE_FILE
`

type app struct {
	out    io.Writer
	apiURL string
	shop   *session.Storefront
	admin  *session.Admin
	cart   *cart.Cart
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := newApp(env("KICKS_API_URL", "http://localhost:5000/api"), clientstore.NewFileStore(statePath()), os.Stdout, os.Stderr)
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", apiclient.Message(err))
		if apiclient.IsKind(err, apiclient.KindUnauthorized) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

func statePath() string {
	if p := os.Getenv("KICKS_STATE_FILE"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "kicks", "state.json")
}

// newApp builds both sessions and the cart over one store. Expired-session
// hints go to errOut.
func newApp(apiURL string, store clientstore.Store, out, errOut io.Writer) *app {
	relogin := func() { fmt.Fprintln(errOut, "session expired, run: kicksctl login") }
	adminRelogin := func() { fmt.Fprintln(errOut, "session expired, run: kicksctl admin login") }
	return &app{
		out:    out,
		apiURL: apiURL,
		shop:   session.NewStorefront(apiURL, store, relogin),
		admin:  session.NewAdmin(apiURL, store, adminRelogin),
		cart:   cart.New(store),
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

var errUsage = errors.New("bad arguments")

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "products":
		return a.products(ctx, args)
	case "product":
		if len(args) != 1 {
			return errUsage
		}
		return a.product(ctx, args[0])
	case "hero":
		return a.hero(ctx, args)
	case "register":
		if len(args) != 3 {
			return errUsage
		}
		email, err := a.shop.API.Register(ctx, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "A verification code was sent to %s.\n", email)
		return nil
	case "verify":
		if len(args) != 2 {
			return errUsage
		}
		code := otp.Sanitize(args[1])
		if !otp.Complete(code) {
			return fmt.Errorf("%w: the code is %d digits", errUsage, otp.Length)
		}
		u, err := a.shop.VerifyOTP(ctx, args[0], code)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Verified. Signed in as %s.\n", u.Name)
		return nil
	case "resend":
		if len(args) != 1 {
			return errUsage
		}
		if err := a.shop.API.ResendOTP(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "A new code is on its way.")
		return nil
	case "login":
		if len(args) != 2 {
			return errUsage
		}
		u, err := a.shop.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Signed in as %s.\n", u.Name)
		return nil
	case "logout":
		a.shop.Logout()
		fmt.Fprintln(a.out, "Signed out.")
		return nil
	case "whoami":
		if err := a.requireShopper(ctx); err != nil {
			return err
		}
		u := a.shop.User()
		fmt.Fprintf(a.out, "%s <%s>, %d saved address(es)\n", u.Name, u.Email, len(u.Addresses))
		return nil
	case "cart":
		return a.cartCmd(ctx, args)
	case "checkout":
		return a.checkout(ctx, args)
	case "orders":
		return a.orders(ctx)
	case "order":
		if len(args) != 1 {
			return errUsage
		}
		return a.order(ctx, args[0])
	case "admin":
		if len(args) == 0 {
			return errUsage
		}
		return a.adminCmd(ctx, args[0], args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	}
	return errUsage
}

func (a *app) table() *tabwriter.Writer { return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0) }

// ---------- storefront ----------

func (a *app) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	category := fs.String("category", "", "category filter")
	q := fs.String("q", "", "search text")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	ps, err := a.shop.API.Products(ctx, *category, *q)
	if err != nil {
		return err
	}
	w := a.table()
	fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tFROM\tSTOCK")
	for _, p := range ps {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", p.ID, p.Name, p.Category, orderview.Money(p.BasePrice), p.TotalStock())
	}
	return w.Flush()
}

func (a *app) product(ctx context.Context, id string) error {
	p, err := a.shop.API.Product(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s)\n%s\n", p.Name, p.Category, p.Description)
	if img := p.PrimaryImageURL(); img != "" {
		fmt.Fprintln(a.out, "image:", storage.ResolveURL(a.apiURL, img))
	}
	w := a.table()
	fmt.Fprintln(w, "VARIANT\tTYPE\tSIZE\tFRAGRANCE\tPRICE\tSTOCK")
	for _, v := range p.Variants {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n", v.ID, v.Type, v.Size, v.Fragrance, orderview.Money(p.EffectivePrice(v)), v.Stock)
	}
	return w.Flush()
}

func (a *app) hero(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("hero", flag.ContinueOnError)
	watch := fs.Bool("watch", false, "cycle slides until interrupted")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	slides, err := a.shop.API.HeroSlides(ctx)
	if err != nil {
		return err
	}
	show := func(i int) {
		s := slides[i]
		fmt.Fprintf(a.out, "%d. %s  %s  [%s -> %s]\n", i+1, s.Title, s.Subtitle, s.CTAText, s.CTALink)
		if s.Image != "" {
			fmt.Fprintln(a.out, "   ", storage.ResolveURL(a.apiURL, s.Image))
		}
	}
	if !*watch || len(slides) == 0 {
		for i := range slides {
			show(i)
		}
		return nil
	}
	c := timers.NewCarousel(len(slides))
	show(c.Current())
	c.Run(ctx, show)
	return nil
}

func (a *app) requireShopper(ctx context.Context) error {
	if err := a.shop.Restore(ctx); err != nil {
		return err
	}
	if !a.shop.Authenticated() {
		return &apiclient.Error{Kind: apiclient.KindUnauthorized, Message: "Please log in to continue"}
	}
	return nil
}

func (a *app) cartCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.showCart(ctx)
	}
	switch args[0] {
	case "add":
		if len(args) < 3 || len(args) > 4 {
			return errUsage
		}
		qty := 1
		if len(args) == 4 {
			n, err := strconv.Atoi(args[3])
			if err != nil {
				return errUsage
			}
			qty = n
		}
		p, err := a.shop.API.Product(ctx, args[1])
		if err != nil {
			return err
		}
		v, ok := p.Variant(args[2])
		if !ok {
			return &apiclient.Error{Kind: apiclient.KindValidation, Message: "That option is not available"}
		}
		if err := a.cart.Add(p, v, qty); err != nil {
			return err
		}
	case "set":
		if len(args) != 4 {
			return errUsage
		}
		n, err := strconv.Atoi(args[3])
		if err != nil {
			return errUsage
		}
		if err := a.cart.SetQuantity(args[1], args[2], n); err != nil {
			return err
		}
	case "rm":
		if len(args) != 3 {
			return errUsage
		}
		if err := a.cart.Remove(args[1], args[2]); err != nil {
			return err
		}
	case "clear":
		if err := a.cart.Clear(); err != nil {
			return err
		}
	default:
		return errUsage
	}
	return a.showCart(ctx)
}

func (a *app) showCart(ctx context.Context) error {
	if a.cart.Empty() {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return nil
	}
	w := a.table()
	fmt.Fprintln(w, "PRODUCT\tVARIANT\tOPTION\tQTY\tPRICE\tLINE")
	for _, l := range a.cart.Lines() {
		d := l.VariantDetails
		fmt.Fprintf(w, "%s\t%s\t%s / %s / %s\t%d\t%s\t%s\n",
			l.ProductID, l.VariantID, d.Type, d.Size, d.Fragrance, l.Quantity, orderview.Money(l.UnitPrice), orderview.Money(l.Subtotal()))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	// rates are display only; fall back to defaults when the API is down
	settings, err := a.shop.API.StoreSettings(ctx)
	if err != nil {
		settings = domain.DefaultSettings()
	}
	sum := a.cart.Preview(settings)
	fmt.Fprintf(a.out, "\n%d item(s)\nSubtotal  %s\nGST (%s%%) %s\nDelivery  %s\nTotal     %s\n",
		a.cart.Count(), orderview.Money(sum.Subtotal), sum.GSTPercentage.String(),
		orderview.Money(sum.GST), orderview.Money(sum.DeliveryCharge), orderview.Money(sum.Total))
	return nil
}

func (a *app) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	addrID := fs.String("address-id", "", "saved address id")
	var addr domain.Address
	fs.StringVar(&addr.Line1, "line1", "", "")
	fs.StringVar(&addr.Line2, "line2", "", "")
	fs.StringVar(&addr.City, "city", "", "")
	fs.StringVar(&addr.State, "state", "", "")
	fs.StringVar(&addr.PostalCode, "postal", "", "")
	fs.StringVar(&addr.Phone, "phone", "", "")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if a.cart.Empty() {
		return &apiclient.Error{Kind: apiclient.KindValidation, Message: "Your cart is empty"}
	}
	if err := a.requireShopper(ctx); err != nil {
		return err
	}
	switch {
	case *addrID != "":
		addr = domain.Address{ID: *addrID}
	case addr.Line1 == "":
		u := a.shop.User()
		for _, saved := range u.Addresses {
			if saved.IsDefault || addr.ID == "" {
				addr = saved
			}
		}
		if addr.ID == "" {
			return &apiclient.Error{Kind: apiclient.KindValidation, Message: "Add a shipping address first"}
		}
	}
	o, err := a.shop.API.CreateOrder(ctx, a.shop.Credentials(), a.cart.OrderRequest(addr))
	if err != nil {
		return err
	}
	if err := a.cart.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Order %s placed. Total %s.\n", o.OrderNumber, orderview.Money(o.Pricing.Total))
	return nil
}

func (a *app) orders(ctx context.Context) error {
	if err := a.requireShopper(ctx); err != nil {
		return err
	}
	list, err := a.shop.API.Orders(ctx, a.shop.Credentials())
	if err != nil {
		return err
	}
	return a.printOrders(list)
}

func (a *app) order(ctx context.Context, id string) error {
	if err := a.requireShopper(ctx); err != nil {
		return err
	}
	o, err := a.shop.API.Order(ctx, a.shop.Credentials(), id)
	if err != nil {
		return err
	}
	a.printOrder(o)
	return nil
}

func (a *app) printOrders(orders []domain.Order) error {
	w := a.table()
	fmt.Fprintln(w, "ID\tNUMBER\tCUSTOMER\tITEMS\tTOTAL\tSTATUS\tPAYMENT\tPLACED")
	for _, r := range orderview.Rows(orders, time.Local) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n", r.ID, r.OrderNumber, r.Customer, r.Items, r.Total, r.Status, r.Payment, r.Placed)
	}
	return w.Flush()
}

func (a *app) printOrder(o *domain.Order) {
	fmt.Fprintf(a.out, "%s  %s  payment %s\n", o.OrderNumber, o.OrderStatus, o.PaymentInfo.Status)
	for _, it := range o.Items {
		fmt.Fprintf(a.out, "  %d x %s (%s) @ %s\n", it.Quantity, it.ProductName, it.VariantDetails, orderview.Money(it.Price))
	}
	fmt.Fprintf(a.out, "Total %s\nHistory:\n", orderview.Money(o.Pricing.Total))
	for _, e := range orderview.Timeline(*o, time.Local) {
		fmt.Fprintf(a.out, "  %s\n", e.String())
	}
}

// ---------- back office ----------

func (a *app) requireAdmin() error {
	if !a.admin.Restore() {
		return &apiclient.Error{Kind: apiclient.KindUnauthorized, Message: "Please log in to continue"}
	}
	return nil
}

func (a *app) adminCmd(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		if len(args) != 2 {
			return errUsage
		}
		ad, err := a.admin.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Signed in as %s (%s).\n", ad.Name, ad.Role)
		return nil
	case "logout":
		a.admin.Logout()
		fmt.Fprintln(a.out, "Signed out.")
		return nil
	}

	if err := a.requireAdmin(); err != nil {
		return err
	}
	cred := a.admin.Credentials()
	switch cmd {
	case "dashboard":
		d, err := a.admin.API.Dashboard(ctx, cred)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Revenue %s  This month %s  Orders today %d  Products %d  Users %d\n",
			orderview.Money(d.TotalRevenue), orderview.Money(d.MonthlySales), d.OrdersToday, d.TotalProducts, d.TotalUsers)
		a.printStock("Low stock", d.LowStock)
		a.printStock("Best selling", d.BestSelling)
		a.printStock("Slow moving", d.SlowMoving)
		fmt.Fprintln(a.out, "\nRecent orders")
		return a.printOrders(d.RecentOrders)
	case "orders":
		list, err := a.admin.API.AdminOrders(ctx, cred)
		if err != nil {
			return err
		}
		return a.printOrders(list)
	case "status":
		if len(args) < 2 {
			return errUsage
		}
		o, err := a.admin.API.UpdateOrderStatus(ctx, cred, args[0], domain.OrderStatus(args[1]), strings.Join(args[2:], " "))
		if err != nil {
			return err
		}
		a.printOrder(o)
		return nil
	case "payment":
		if len(args) != 2 {
			return errUsage
		}
		o, err := a.admin.API.UpdatePayment(ctx, cred, args[0], domain.PaymentStatus(args[1]))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s payment %s\n", o.OrderNumber, o.PaymentInfo.Status)
		return nil
	case "settings":
		return a.settings(ctx, cred, args)
	case "users":
		us, err := a.admin.API.AdminUsers(ctx, cred)
		if err != nil {
			return err
		}
		w := a.table()
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tVERIFIED\tJOINED")
		for _, u := range us {
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", u.ID, u.Name, u.Email, u.IsVerified, orderview.FormatTime(u.CreatedAt, time.Local))
		}
		return w.Flush()
	}
	return errUsage
}

func (a *app) printStock(title string, rows []apiclient.StockRow) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(a.out, "\n%s\n", title)
	w := a.table()
	for _, r := range rows {
		fmt.Fprintf(w, "  %s\t%s\t%s\tstock %d\tsold %d\n", r.Product, r.Variant, r.SKU, r.Stock, r.SalesCount)
	}
	_ = w.Flush()
}

func (a *app) settings(ctx context.Context, cred apiclient.Credentials, args []string) error {
	fs := flag.NewFlagSet("settings", flag.ContinueOnError)
	gst := fs.String("gst", "", "GST percentage")
	delivery := fs.String("delivery", "", "delivery charge")
	low := fs.Int("low-stock", -1, "low stock threshold")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	var upd apiclient.SettingsUpdate
	changed := false
	for _, f := range []struct {
		raw string
		dst **decimal.Decimal
	}{{*gst, &upd.GSTPercentage}, {*delivery, &upd.DeliveryCharge}} {
		if f.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return errUsage
		}
		*f.dst = &d
		changed = true
	}
	if *low >= 0 {
		upd.LowStockThreshold = low
		changed = true
	}

	var s domain.Settings
	var err error
	if changed {
		s, err = a.admin.API.UpdateSettings(ctx, cred, upd)
	} else {
		s, err = a.admin.API.Settings(ctx, cred)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "GST %s%%  Delivery %s  Low stock at %d\n", s.GSTPercentage.String(), orderview.Money(s.DeliveryCharge), s.LowStockThreshold)
	return nil
}
