package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"recipehub/internal/core"
	"recipehub/internal/log"
	"recipehub/internal/services"
)

// storeOpener returns the store to work against, the logger services should
// use and a cleanup to run when the command is done.
type storeOpener func(ctx context.Context) (services.CatalogStore, *log.Logger, func() error, error)

type app struct {
	open storeOpener
}

// withCatalog opens the store, runs fn and releases the store again.
func (a *app) withCatalog(cmd *cobra.Command, fn func(*services.RecipeCatalog, *services.GroceryService) error) (err error) {
	store, logger, cleanup, err := a.open(cmd.Context())
	if err != nil {
		return fmt.Errorf("open recipe store: %w", err)
	}
	if cleanup != nil {
		defer func() {
			if cerr := cleanup(); cerr != nil && err == nil {
				err = cerr
			}
		}()
	}
	return fn(services.NewRecipeCatalog(store, logger), services.NewGroceryService(store, logger))
}

func newRootCmd(open storeOpener) *cobra.Command {
	a := &app{open: open}
	root := &cobra.Command{
		Use:          "recipes",
		Short:        "Browse recipes and build grocery lists",
		SilenceUsage: true,
	}
	root.AddCommand(
		a.listCmd(),
		a.showCmd(),
		a.addCmd(),
		a.deleteCmd(),
		a.groceryCmd(),
		parseCmd(),
	)
	return root
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recipe titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withCatalog(cmd, func(c *services.RecipeCatalog, _ *services.GroceryService) error {
				titles, err := c.Titles(cmd.Context())
				if err != nil {
					return err
				}
				for _, t := range titles {
					fmt.Fprintln(cmd.OutOrStdout(), t)
				}
				return nil
			})
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show TITLE",
		Short: "Show a recipe's author, ingredients and instructions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd, func(c *services.RecipeCatalog, _ *services.GroceryService) error {
				r, err := c.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printRecipe(cmd.OutOrStdout(), r)
				return nil
			})
		},
	}
}

func printRecipe(w io.Writer, r core.Recipe) {
	fmt.Fprintf(w, "%s\nAuthor: %s\n\nIngredients:\n", r.Title, r.Author)
	for _, line := range r.Ingredients {
		fmt.Fprintf(w, "  • %s\n", line)
	}
	if r.Instructions != "" {
		fmt.Fprintf(w, "\nInstructions:\n%s\n", r.Instructions)
	}
}

func (a *app) addCmd() *cobra.Command {
	var (
		title, author, instructions string
		ingredients                 []string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a recipe",
		Long: `Add a recipe. Each --ingredient is "QUANTITY;UNIT;NAME", "QUANTITY;NAME" or
just "NAME"; empty parts are left out of the stored line.`,
		Example: `  recipes add --title Pancakes --author Ann \
    --ingredient "2;Cup(s);Flour" --ingredient "2;Egg" --instructions "Mix and fry."`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := make([]core.IngredientInput, 0, len(ingredients))
			for _, in := range ingredients {
				rows = append(rows, parseIngredientFlag(in))
			}
			return a.withCatalog(cmd, func(c *services.RecipeCatalog, _ *services.GroceryService) error {
				r, ref, err := c.Add(cmd.Context(), title, author, rows, instructions)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q (%s) with %d ingredients\n", r.Title, ref, len(r.Ingredients))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "recipe title (unique)")
	cmd.Flags().StringVar(&author, "author", "", "who submitted the recipe")
	cmd.Flags().StringVar(&instructions, "instructions", "", "preparation steps")
	cmd.Flags().StringArrayVar(&ingredients, "ingredient", nil, "ingredient row, repeatable")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")
	return cmd
}

// parseIngredientFlag splits a "QUANTITY;UNIT;NAME" flag value. Two parts
// are quantity and name; one part is the name alone.
func parseIngredientFlag(s string) core.IngredientInput {
	parts := strings.Split(s, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch len(parts) {
	case 1:
		return core.IngredientInput{Name: parts[0]}
	case 2:
		return core.IngredientInput{Quantity: parts[0], Name: parts[1]}
	default:
		return core.IngredientInput{Quantity: parts[0], Unit: parts[1], Name: strings.Join(parts[2:], ";")}
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete TITLE",
		Short: "Delete a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCatalog(cmd, func(c *services.RecipeCatalog, _ *services.GroceryService) error {
				if err := c.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", args[0])
				return nil
			})
		},
	}
}

func (a *app) groceryCmd() *cobra.Command {
	var selects []string
	cmd := &cobra.Command{
		Use:     "grocery",
		Short:   "Print the consolidated grocery list for the selected recipes",
		Example: `  recipes grocery --select "Pancakes=2" --select Waffles`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selections, err := services.ParseSelections(selects)
			if err != nil {
				return err
			}
			return a.withCatalog(cmd, func(_ *services.RecipeCatalog, g *services.GroceryService) error {
				list, err := g.Generate(cmd.Context(), selections)
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), list.Render())
				return err
			})
		},
	}
	cmd.Flags().StringArrayVarP(&selects, "select", "s", nil, `recipe and batch count as "Title=N", repeatable`)
	return cmd
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse LINE...",
		Short: "Split ingredient lines into quantity, unit and name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "QUANTITY\tUNIT\tNAME")
			for _, line := range args {
				p := core.ParseIngredient(line)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Quantity, p.Unit, p.Name)
			}
			return tw.Flush()
		},
	}
}
