package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/purrfect/internal/models"
	"github.com/diogo/purrfect/internal/storefront"
)

func newStoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Browse the Purrfect Ventures catalog",
	}
	cmd.AddCommand(newStoreListCmd(a), newStoreDescribeCmd(a))
	return cmd
}

func newStoreListCmd(a *app) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products and services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			products := storefront.Products()
			if category != "" {
				products = storefront.ByCategory(models.Category(strings.ToLower(category)))
				if len(products) == 0 {
					return fmt.Errorf("no products in category %q", category)
				}
			}

			w := a.deps.Out
			fmt.Fprintln(w, headingStyle.Render("Products"))
			for _, p := range products {
				printProduct(w, p, p.Description)
			}

			if category == "" {
				fmt.Fprintln(w)
				fmt.Fprintln(w, headingStyle.Render("Services"))
				for _, s := range storefront.Services() {
					fmt.Fprintf(w, "  %s %-22s %s\n", s.Icon, s.Name, priceStyle.Render(s.Price))
					fmt.Fprintf(w, "     %s\n", dimStyle.Render(s.Description))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only list products in category (toy, furniture, food, accessory)")
	return cmd
}

func newStoreDescribeCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "describe [product id or name...]",
		Short: "Write witty product copy with the model",
		Long: `Generate a short marketing description for products.

Without an API key each product shows a hint instead of a description.`,
		Example: `  purrfect store describe 3
  purrfect store describe "Feather Wand Pro"
  purrfect store describe --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("name a product or pass --all")
			}

			items := storefront.Products()
			if !all {
				items = items[:0]
				for _, ref := range args {
					p, ok := storefront.FindProduct(ref)
					if !ok {
						return fmt.Errorf("unknown product %q", ref)
					}
					items = append(items, p)
				}
			}

			return a.runDescribe(cmd, items)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Describe every product")
	return cmd
}

func (a *app) runDescribe(cmd *cobra.Command, items []models.Product) error {
	cfg, err := a.settings()
	if err != nil {
		return err
	}

	gen, err := a.deps.NewGenerator(cfg, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	describer := storefront.NewDescriber(gen, storefront.WithLogger(a.logger))

	spin := a.progress("Writing product copy")
	descriptions, err := describer.DescribeAll(cmd.Context(), items)
	if err != nil {
		spin.fail()
		return err
	}
	spin.succeed(fmt.Sprintf("%d descriptions", len(descriptions)))

	for _, p := range items {
		printProduct(a.deps.Out, p, descriptions[p.ID])
	}
	return nil
}

func printProduct(w io.Writer, p models.Product, description string) {
	fmt.Fprintf(w, "  %-3s %-26s %s %s\n", p.ID, p.Name, priceStyle.Render(p.PriceLabel()), dimStyle.Render(string(p.Category)))
	fmt.Fprintf(w, "      %s\n", description)
}
