package cmd

import (
	"fmt"
	"os"

	"github.com/marketerz/marketerz/pkg/prompts"
	"github.com/spf13/cobra"
)

// regenerateCmd represents the regenerate command
var regenerateCmd = &cobra.Command{
	Use:   "regenerate <category>",
	Short: "Regenerate the prompt of one category in the current session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := prompts.ParseCategory(args[0])
		if err != nil {
			return err
		}
		asJSON, _ := cmd.Flags().GetBool("json")
		raw, _ := cmd.Flags().GetBool("raw")

		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.close()

		a.ctrl.Start("")
		fmt.Fprintf(os.Stderr, "Regenerating %s...\n", category)

		p, err := a.ctrl.Regenerate(cmd.Context(), category)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(os.Stdout, p)
		}
		printPrompt(os.Stdout, p, raw)
		return nil
	},
}

// imageCmd represents the image command
var imageCmd = &cobra.Command{
	Use:   "image <category>",
	Short: "Render an image from the prompt of one category",
	Long: `Render a square image from the prompt of one category in the current session.

The image is written to --output, or printed as a data URL when no output is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := prompts.ParseCategory(args[0])
		if err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")

		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.close()

		a.ctrl.Start("")
		fmt.Fprintf(os.Stderr, "Generating image for %s...\n", category)

		img, err := a.ctrl.GenerateImage(cmd.Context(), category)
		if err != nil {
			return err
		}
		if output == "" {
			fmt.Println(img.DataURL())
			return nil
		}
		if err := os.WriteFile(output, img.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write image: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Image written to %s (%d bytes)\n", output, len(img.Data))
		return nil
	},
}

// shareCmd represents the share command
var shareCmd = &cobra.Command{
	Use:   "share <category>",
	Short: "Print a share link for the current idea and one category's prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, err := prompts.ParseCategory(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		a.ctrl.Start("")
		link, err := a.ctrl.ShareLink(category)
		if err != nil {
			return err
		}
		fmt.Println(link)
		return nil
	},
}

// openCmd represents the open command
var openCmd = &cobra.Command{
	Use:   "open <link>",
	Short: "Open a share link, making its idea and prompt the current session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")

		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		a.ctrl.Start(args[0])
		st := a.ctrl.State()
		if !st.FromShareLink {
			return fmt.Errorf("%q does not carry a valid shared prompt", args[0])
		}

		if !raw {
			fmt.Printf("Idea: %s\n\n", st.Idea)
		}
		printPrompts(os.Stdout, st.Prompts, raw)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regenerateCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(openCmd)

	regenerateCmd.Flags().Bool("json", false, "Print the prompt as JSON")
	regenerateCmd.Flags().Bool("raw", false, "Print only the prompt body")
	imageCmd.Flags().StringP("output", "o", "", "Write the image to this file")
	openCmd.Flags().Bool("raw", false, "Print only the prompt body")
}
