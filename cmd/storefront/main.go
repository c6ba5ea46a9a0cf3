// storefront is a terminal front end for the phone shop API. Cart, theme and
// the admin session live in a local bbolt file between runs.
//
// Usage:
//
//	storefront [-server URL] [-state FILE] <command> [args]
//
// Commands:
//
//	products [-q text] [-band under-1m|1m-2m|2m-2.5m|2.5m+]
//	product <id>
//	add <id> | remove <id> | inc <id> | dec <id>
//	cart
//	checkout -name N -email E -phone P -address A
//	login -email E -password P | logout
//	orders [-status all|pending|completed]
//	complete <id>
//	theme
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"phoneempire/internal/domain"
	"phoneempire/internal/pricing"
	"phoneempire/internal/storefront"
	"phoneempire/internal/validate"
)

func main() {
	server := flag.String("server", envOr("PHONEEMPIRE_URL", "http://localhost:3000"), "API base URL")
	state := flag.String("state", envOr("STOREFRONT_STATE", "storefront.db"), "local state file")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request timeout")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	store, err := storefront.OpenBoltStorage(*state)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer store.Close()

	app := storefront.NewApp(storefront.NewClient(*server, *timeout), store)
	_ = app.Notes.OnNotice(func(n storefront.Notice) {
		fmt.Printf("[%s] %s\n", n.Level, n.Message)
	})
	if err := app.Restore(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := run(context.Background(), app, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		store.Close()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: storefront [-server URL] [-state FILE] <products|product|add|remove|inc|dec|cart|checkout|login|logout|orders|complete|theme> [args]")
	flag.PrintDefaults()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func run(ctx context.Context, app *storefront.App, cmd string, args []string) error {
	switch cmd {
	case "products":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		q := fs.String("q", "", "search name or description")
		band := fs.String("band", "all", "final price band")
		_ = fs.Parse(args)
		if !storefront.PriceBand(*band).Valid() {
			return fmt.Errorf("unknown band %q", *band)
		}
		if err := app.RefreshCatalog(ctx); err != nil {
			return err
		}
		printProducts(app.Catalog.Filter(storefront.Filter{Query: *q, Band: storefront.PriceBand(*band)}))
		return nil

	case "product":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		d, err := app.Product(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("%s  (#%d, %s)\n%s\n", d.Name, d.ID, d.Category, d.Description)
		fmt.Printf("Original price: %s\n", pricing.Format(d.Pricing.Original))
		if d.Pricing.Discount > 0 {
			fmt.Printf("Discount (%g%%): -%s\n", d.Pricing.Percent, pricing.Format(d.Pricing.Discount))
		}
		fmt.Printf("Final price:    %s\n", pricing.Format(d.Pricing.Final))
		return nil

	case "add", "remove", "inc", "dec":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		switch cmd {
		case "add":
			err = app.Cart.Add(ctx, id)
		case "remove":
			err = app.Cart.Remove(id)
		case "inc":
			_, err = app.Cart.ChangeQuantity(id, 1)
		case "dec":
			_, err = app.Cart.ChangeQuantity(id, -1)
		}
		if err != nil {
			return err
		}
		fmt.Printf("cart: %d item(s), %s\n", app.Cart.ItemCount(), pricing.Format(app.Cart.Total()))
		return nil

	case "cart":
		printCart(app.Cart)
		return nil

	case "checkout":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		var who storefront.Contact
		fs.StringVar(&who.Name, "name", "", "full name")
		fs.StringVar(&who.Email, "email", "", "email address")
		fs.StringVar(&who.Phone, "phone", "", "phone number")
		fs.StringVar(&who.Address, "address", "", "delivery address")
		_ = fs.Parse(args)
		order, err := app.Checkout.Submit(ctx, who)
		if err != nil {
			return err
		}
		fmt.Printf("order #%d placed, total %s\n", order.ID, pricing.Format(order.Total))
		app.Checkout.Wait()
		return nil

	case "login":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		email := fs.String("email", "", "admin email")
		password := fs.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
		_ = fs.Parse(args)
		s, err := app.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s until %s\n", s.Email, s.ExpiresAt.Local().Format(time.RFC1123))
		return nil

	case "logout":
		return app.Logout()

	case "orders":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		status := fs.String("status", "all", "all, pending or completed")
		_ = fs.Parse(args)
		orders, err := app.Checkout.FilterByStatus(ctx, *status)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tCUSTOMER\tITEMS\tTOTAL\tSTATUS")
		for _, o := range orders {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n", o.ID, o.CreatedAt.Local().Format("2006-01-02 15:04"), o.Name, len(o.Items), pricing.Format(o.Total), o.Status)
		}
		return w.Flush()

	case "complete":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		_, err = app.Checkout.MarkCompleted(ctx, id)
		return err

	case "theme":
		th, err := app.ToggleTheme()
		if err != nil {
			return err
		}
		fmt.Println("theme:", th)
		return nil
	}
	usage()
	return fmt.Errorf("unknown command %q", cmd)
}

func idArg(args []string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("missing product or order id")
	}
	id, ok := validate.ID(args[0])
	if !ok {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func printProducts(ps []domain.Product) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tDISCOUNT\tFINAL")
	for _, p := range ps {
		discount := "-"
		if p.Discount > 0 {
			discount = fmt.Sprintf("%g%%", p.Discount)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Name, pricing.Format(p.Price), discount, pricing.Format(p.FinalPrice()))
	}
	_ = w.Flush()
}

func printCart(cart *storefront.Cart) {
	lines := cart.Lines()
	if len(lines) == 0 {
		fmt.Println("Your cart is empty")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tUNIT\tQTY\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", l.ID, l.Name, pricing.Format(l.FinalPrice), l.Quantity, pricing.Format(l.Subtotal()))
	}
	fmt.Fprintf(w, "\t\t\t%d\t%s\n", cart.ItemCount(), pricing.Format(cart.Total()))
	_ = w.Flush()
}
