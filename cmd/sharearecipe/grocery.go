package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dukerupert/sharearecipe/internal/grocery"
	"github.com/dukerupert/sharearecipe/internal/model"
	"github.com/dukerupert/sharearecipe/internal/social"
)

func runGrocery(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, "\n")
	if len(args) == 0 {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}

	list := model.GroceryList{Items: grocery.BuildItems(text)}
	if len(list.Items) == 0 {
		return fmt.Errorf("no ingredients found")
	}

	out := cmd.OutOrStdout()
	for _, group := range social.ByCategory(list) {
		fmt.Fprintln(out, group.Category)
		for _, item := range group.Items {
			fmt.Fprintf(out, "  - %s\n", item.Name)
		}
	}
	return nil
}
