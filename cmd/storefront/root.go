package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sivakirlampalli/Ecommerce-Website/internal/app"
	"github.com/sivakirlampalli/Ecommerce-Website/internal/catalog"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/enums"
	pkgerrors "github.com/sivakirlampalli/Ecommerce-Website/pkg/errors"
	"github.com/sivakirlampalli/Ecommerce-Website/pkg/pagination"
	"github.com/spf13/cobra"
)

// runtime carries the process-wide handles shared by every command.
type runtime struct {
	stdout io.Writer
	stderr io.Writer
	open   func(ctx context.Context) (*app.App, error)

	app          *app.App
	printMetrics bool
}

// execute runs one command line and returns the process exit code.
func execute(ctx context.Context, rt *runtime, args []string) int {
	root := newRootCmd(rt)
	root.SetArgs(args)
	root.SetOut(rt.stdout)
	root.SetErr(rt.stderr)

	err := root.ExecuteContext(ctx)

	printed := 0
	if rt.app != nil {
		notices := rt.app.Notices.Drain()
		printed = len(notices)
		printNotices(rt.stdout, notices)
		if rt.printMetrics {
			if merr := rt.app.WriteMetrics(rt.stderr); merr != nil {
				fmt.Fprintf(rt.stderr, "metrics: %v\n", merr)
			}
		}
		if cerr := rt.app.Close(); cerr != nil {
			fmt.Fprintf(rt.stderr, "close: %v\n", cerr)
		}
		rt.app = nil
	}
	if err == nil {
		return 0
	}
	return reportError(rt.stderr, err, printed > 0)
}

// reportError prints err unless a notification already told the user, and maps it to an exit code.
func reportError(w io.Writer, err error, notified bool) int {
	typed := pkgerrors.As(err)
	if typed == nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}
	meta := pkgerrors.MetadataFor(typed.Code())
	if !notified {
		msg := typed.Message()
		if msg == "" {
			msg = meta.PublicMessage
		}
		fmt.Fprintf(w, "Error: %s\n", msg)
	}
	return meta.ExitCode
}

func (rt *runtime) withApp(fn func(ctx context.Context, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := rt.open(cmd.Context())
		if err != nil {
			return err
		}
		rt.app = a
		return fn(cmd.Context(), a, args)
	}
}

func newRootCmd(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:   "storefront",
		Short: "Browse toys and manage your cart from the terminal",
		Long: `storefront is the terminal front end of the toy store.

Each invocation is a fresh process. The signed-in identity and the cart
are kept in durable storage (sqlite by default, see TOYSTORE_STORAGE_DRIVER)
so they survive between commands until you sign out.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&rt.printMetrics, "metrics", false, "print process metrics to stderr after the command")

	root.AddCommand(
		productsCmd(rt),
		productCmd(rt),
		categoriesCmd(rt),
		signInCmd(rt),
		signUpCmd(rt),
		signOutCmd(rt),
		whoamiCmd(rt),
		cartCmd(rt),
	)
	return root
}

func productsCmd(rt *runtime) *cobra.Command {
	var (
		category string
		search   string
		sortBy   string
		featured int
		page     pagination.Params
	)
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the catalog",
		Args:  cobra.NoArgs,
		RunE: rt.withApp(func(_ context.Context, a *app.App, _ []string) error {
			if featured > 0 {
				printProducts(rt.stdout, a.Catalog.Featured(featured))
				return nil
			}
			filter, err := parseFilter(category, search, sortBy)
			if err != nil {
				return err
			}
			result, err := a.Catalog.QueryPage(filter, page)
			if err != nil {
				return err
			}
			printProducts(rt.stdout, result.Products)
			if result.NextCursor != "" {
				fmt.Fprintf(rt.stdout, "%d products, more with --cursor %s\n", result.Total, result.NextCursor)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&category, "category", "", `category name or slug ("All" for every category)`)
	cmd.Flags().StringVar(&search, "search", "", "match name, description or brand")
	cmd.Flags().StringVar(&sortBy, "sort", string(enums.ProductSortName), "name | price-low | price-high | newest")
	cmd.Flags().IntVar(&featured, "featured", 0, "show the first N products from the home page instead")
	cmd.Flags().IntVar(&page.Limit, "limit", pagination.DefaultLimit, "products per page")
	cmd.Flags().StringVar(&page.Cursor, "cursor", "", "continue from a previous page")
	return cmd
}

func parseFilter(category, search, sortBy string) (catalog.Filter, error) {
	filter := catalog.Filter{Search: search}
	if c := strings.TrimSpace(category); c != "" && !strings.EqualFold(c, enums.ProductCategoryAll) {
		parsed, err := enums.ParseProductCategory(c)
		if err != nil {
			return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("unknown category %q", category))
		}
		filter.Category = parsed
	}
	sort, err := enums.ParseProductSort(sortBy)
	if err != nil {
		return filter, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("unknown sort %q", sortBy))
	}
	filter.Sort = sort
	return filter, nil
}

func productCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: rt.withApp(func(_ context.Context, a *app.App, args []string) error {
			product, err := a.Catalog.Lookup(args[0])
			if err != nil {
				return err
			}
			printProduct(rt.stdout, product)
			return nil
		}),
	}
}

func categoriesCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the category filters",
		Args:  cobra.NoArgs,
		RunE: rt.withApp(func(_ context.Context, a *app.App, _ []string) error {
			for _, c := range a.Catalog.Categories() {
				fmt.Fprintln(rt.stdout, c)
			}
			return nil
		}),
	}
}

func credentialFlags(cmd *cobra.Command, email, password *string) {
	cmd.Flags().StringVar(email, "email", "", "account email")
	cmd.Flags().StringVar(password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
}

func signInCmd(rt *runtime) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and restore the saved cart",
		Args:  cobra.NoArgs,
		RunE: rt.withApp(func(ctx context.Context, a *app.App, _ []string) error {
			_, err := a.Session.SignIn(ctx, email, password)
			return err
		}),
	}
	credentialFlags(cmd, &email, &password)
	return cmd
}

func signUpCmd(rt *runtime) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: rt.withApp(func(ctx context.Context, a *app.App, _ []string) error {
			_, err := a.Session.SignUp(ctx, email, password)
			return err
		}),
	}
	credentialFlags(cmd, &email, &password)
	return cmd
}

func signOutCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Sign out and discard the saved cart",
		Args:  cobra.NoArgs,
		RunE: rt.withApp(func(ctx context.Context, a *app.App, _ []string) error {
			return a.Session.SignOut(ctx)
		}),
	}
}

func whoamiCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity",
		Args:  cobra.NoArgs,
		RunE: rt.withApp(func(_ context.Context, a *app.App, _ []string) error {
			user := a.Session.User()
			if user == nil {
				fmt.Fprintln(rt.stdout, "Not signed in")
				return nil
			}
			fmt.Fprintf(rt.stdout, "Signed in as %s (%s)\n", user.Email, user.ID)
			return nil
		}),
	}
}

func cartCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show the cart with totals",
		Args:  cobra.NoArgs,
		RunE: rt.withApp(func(_ context.Context, a *app.App, _ []string) error {
			printCart(rt.stdout, a.Cart.Items(), a.Cart.TotalItems(), a.Cart.TotalPrice())
			return nil
		}),
	}

	var qty int
	add := &cobra.Command{
		Use:   "add <productID>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: rt.withApp(func(ctx context.Context, a *app.App, args []string) error {
			product, err := a.Catalog.Lookup(args[0])
			if err != nil {
				return err
			}
			return a.Cart.AddToCart(ctx, product, qty)
		}),
	}
	add.Flags().IntVar(&qty, "qty", 1, "quantity to add")

	remove := &cobra.Command{
		Use:   "remove <itemID>",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: rt.withApp(func(ctx context.Context, a *app.App, args []string) error {
			return a.Cart.RemoveFromCart(ctx, args[0])
		}),
	}

	update := &cobra.Command{
		Use:   "update <itemID> <qty>",
		Short: "Set a cart line's quantity (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: rt.withApp(func(ctx context.Context, a *app.App, args []string) error {
			quantity, err := strconv.Atoi(args[1])
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("quantity %q is not a number", args[1]))
			}
			return a.Cart.UpdateQuantity(ctx, args[0], quantity)
		}),
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: rt.withApp(func(ctx context.Context, a *app.App, _ []string) error {
			return a.Cart.ClearCart(ctx)
		}),
	}

	cmd.AddCommand(add, remove, update, clearCmd)
	return cmd
}
