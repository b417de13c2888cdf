package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/kbrands/storefront-go/internal/api"
	"github.com/kbrands/storefront-go/internal/checkout"
	"github.com/kbrands/storefront-go/internal/config"
	"github.com/kbrands/storefront-go/internal/model"
	"github.com/kbrands/storefront-go/internal/session"
	"github.com/kbrands/storefront-go/internal/token"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	client := api.NewClient(cfg.APIBaseURL,
		api.WithTimeout(cfg.HTTPTimeout),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)
	store := token.NewFileStore(cfg.TokenFile)
	ctrl := session.New(client, store)

	ctx := context.Background()
	if err := ctrl.Initialize(ctx); err != nil {
		slog.Warn("restoring session failed", "error", err)
	}

	if err := run(ctx, os.Args[1], os.Args[2:], cfg, client, ctrl); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string, cfg config.Config, client *api.Client, ctrl *session.Controller) error {
	switch command {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		fs.Parse(args)
		if err := ctrl.Login(ctx, *email, *password); err != nil {
			return err
		}
		fmt.Println("logged in as", *email)
		return nil

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		req := model.RegisterRequest{}
		fs.StringVar(&req.Username, "username", "", "username")
		fs.StringVar(&req.Email, "email", "", "account email")
		fs.StringVar(&req.FirstName, "first-name", "", "first name")
		fs.StringVar(&req.LastName, "last-name", "", "last name")
		fs.StringVar(&req.Password, "password", "", "password")
		fs.Parse(args)
		req.PasswordConfirm = req.Password
		if err := ctrl.Register(ctx, req); err != nil {
			return err
		}
		fmt.Println("registered and logged in as", req.Email)
		return nil

	case "logout":
		ctrl.Logout()
		fmt.Println("logged out")
		return nil

	case "whoami":
		state := ctrl.Snapshot()
		if !state.LoggedIn() || state.Profile == nil {
			fmt.Println("not logged in")
			return nil
		}
		p := state.Profile
		fmt.Printf("%s <%s> %s %s", p.Username, p.Email, p.FirstName, p.LastName)
		if p.IsVendor {
			fmt.Print(" (vendor)")
		}
		fmt.Println()
		return nil

	case "profile-update":
		fs := flag.NewFlagSet("profile-update", flag.ExitOnError)
		first := fs.String("first-name", "", "new first name")
		last := fs.String("last-name", "", "new last name")
		fs.Parse(args)
		profile, err := client.UpdateProfile(ctx, model.ProfileUpdate{FirstName: *first, LastName: *last})
		if err != nil {
			return err
		}
		fmt.Printf("profile updated: %s %s\n", profile.FirstName, profile.LastName)
		return nil

	case "products":
		fs := flag.NewFlagSet("products", flag.ExitOnError)
		search := fs.String("search", "", "search term")
		category := fs.String("category", "", "category filter")
		fs.Parse(args)
		products, err := client.Products(ctx, *search, *category)
		if err != nil {
			return err
		}
		printProducts(products)
		return nil

	case "product":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		product, err := client.Product(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("%s  $%s\n%s\nstock: %d  category: %s\n",
			product.Name, model.FormatAmount(product.Price), product.Description, product.Stock, product.Category)
		return nil

	case "cart":
		printCart(ctrl.Snapshot().Cart)
		return nil

	case "cart-add":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		if err := ctrl.AddToCart(ctx, id); err != nil {
			return err
		}
		printCart(ctrl.Snapshot().Cart)
		return nil

	case "cart-remove":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		if err := ctrl.RemoveFromCart(ctx, id); err != nil {
			return err
		}
		printCart(ctrl.Snapshot().Cart)
		return nil

	case "cart-clear":
		if _, err := client.ClearCart(ctx); err != nil {
			return err
		}
		ctrl.Synchronize(ctx)
		fmt.Println("cart cleared")
		return nil

	case "wishlist":
		items, err := client.Wishlist(ctx)
		if err != nil {
			return err
		}
		for _, item := range items {
			fmt.Printf("%d\t%s\t$%s\n", item.Product.ID, item.Product.Name, model.FormatAmount(item.Product.Price))
		}
		return nil

	case "wishlist-add":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		return client.AddToWishlist(ctx, id)

	case "wishlist-remove":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		return client.RemoveFromWishlist(ctx, id)

	case "orders":
		orders, err := client.Orders(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, o := range orders {
			fmt.Fprintf(w, "%s\t%s\t$%s\t%s\n", o.ID, o.Status, model.FormatAmount(o.TotalAmount), o.CreatedAt.Format("2006-01-02"))
		}
		return w.Flush()

	case "order":
		if len(args) < 1 {
			return fmt.Errorf("usage: order <order-id>")
		}
		order, err := client.Order(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("order %s: %s, $%s, ship to %s\n",
			order.ID, order.Status, model.FormatAmount(order.TotalAmount), order.ShippingAddress)
		for _, item := range order.Items {
			fmt.Printf("  %d × %s @ $%s\n", item.Quantity, item.Product.Name, model.FormatAmount(item.Price))
		}
		return nil

	case "order-create":
		fs := flag.NewFlagSet("order-create", flag.ExitOnError)
		address := fs.String("address", "", "shipping address")
		shipping := fs.String("shipping", "Standard Shipping", "shipping method")
		fs.Parse(args)

		cart := ctrl.Snapshot().Cart
		if len(cart) == 0 {
			return fmt.Errorf("cart is empty")
		}
		lines := make([]model.OrderLine, len(cart))
		for i, item := range cart {
			lines[i] = model.OrderLine{ProductID: item.Product.ID, Quantity: item.Quantity}
		}
		order, err := client.CreateOrder(ctx, model.CreateOrderRequest{
			Cart:           lines,
			Address:        *address,
			ShippingMethod: *shipping,
		})
		if err != nil {
			return err
		}
		ctrl.Synchronize(ctx)
		fmt.Printf("order %s placed, total $%s\n", order.ID, model.FormatAmount(order.TotalAmount))
		return nil

	case "checkout":
		fs := flag.NewFlagSet("checkout", flag.ExitOnError)
		orderID := fs.String("order", "", "order id to pay")
		card := checkout.Card{}
		fs.StringVar(&card.Number, "number", "", "card number")
		fs.IntVar(&card.ExpMonth, "month", 0, "expiry month")
		fs.IntVar(&card.ExpYear, "year", 0, "expiry year")
		fs.StringVar(&card.CVC, "cvc", "", "card cvc")
		fs.StringVar(&card.Name, "name", "", "cardholder name")
		fs.Parse(args)

		gateway := checkout.NewHTTPGateway(cfg.GatewayBaseURL)
		svc := checkout.NewService(client, gateway)
		if err := svc.Pay(ctx, *orderID, card); err != nil {
			return err
		}
		fmt.Println("payment successful")
		return nil

	case "store-settings":
		fs := flag.NewFlagSet("store-settings", flag.ExitOnError)
		name := fs.String("name", "", "new store name (omit to show current)")
		fs.Parse(args)
		if *name == "" {
			settings, err := client.StoreSettings(ctx)
			if err != nil {
				return err
			}
			fmt.Println("store name:", settings.StoreName)
			return nil
		}
		settings, err := client.UpdateStoreSettings(ctx, *name)
		if err != nil {
			return err
		}
		fmt.Println("store name updated:", settings.StoreName)
		return nil

	case "forgot-password":
		fs := flag.NewFlagSet("forgot-password", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		fs.Parse(args)
		return client.ForgotPassword(ctx, *email)

	case "reset-password":
		fs := flag.NewFlagSet("reset-password", flag.ExitOnError)
		reset := fs.String("token", "", "reset token")
		password := fs.String("password", "", "new password")
		fs.Parse(args)
		return client.ResetPassword(ctx, *reset, *password)

	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func parseID(args []string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("product id required")
	}
	var id int64
	if _, err := fmt.Sscanf(args[0], "%d", &id); err != nil {
		return 0, fmt.Errorf("invalid product id %q", args[0])
	}
	return id, nil
}

func printProducts(products []model.Product) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t$%s\t%s\tstock %d\n", p.ID, p.Name, model.FormatAmount(p.Price), p.Category, p.Stock)
	}
	w.Flush()
}

func printCart(items []model.CartItem) {
	if len(items) == 0 {
		fmt.Println("your cart is empty")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, item := range items {
		fmt.Fprintf(w, "%s\t$%s × %d\n", item.Product.Name, model.FormatAmount(item.Product.Price), item.Quantity)
	}
	w.Flush()
	fmt.Println("total:", "$"+model.FormatAmount(model.CartTotal(items)))
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: storefront <command> [flags]

commands:
  login, register, logout, whoami, profile-update
  products, product <id>
  cart, cart-add <id>, cart-remove <id>, cart-clear
  wishlist, wishlist-add <id>, wishlist-remove <id>
  orders, order <id>, order-create, checkout
  store-settings, forgot-password, reset-password`)
}
