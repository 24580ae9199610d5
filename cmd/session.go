package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect, edit or clear the current draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionShowCmd.RunE(cmd, args)
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current idea and prompts",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		a.ctrl.Start("")
		st := a.ctrl.State()
		if asJSON {
			return printJSON(os.Stdout, struct {
				Idea    string      `json:"idea"`
				Prompts interface{} `json:"prompts"`
			}{st.Idea, st.Prompts})
		}
		if strings.TrimSpace(st.Idea) == "" && len(st.Prompts) == 0 {
			fmt.Println("The session is empty.")
			return nil
		}
		fmt.Printf("Idea: %s\n\n", st.Idea)
		printPrompts(os.Stdout, st.Prompts, false)
		return nil
	},
}

var sessionIdeaCmd = &cobra.Command{
	Use:   "idea <text>",
	Short: "Replace the idea of the current session",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		a.ctrl.Start("")
		a.ctrl.SetIdea(strings.Join(args, " "))
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the current idea and prompts",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := openApp(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer a.close()

		a.ctrl.Start("")
		confirm := promptConfirmer(bufio.NewReader(os.Stdin), os.Stdout)
		if yes {
			confirm = func(string) bool { return true }
		}
		if !a.ctrl.ClearSession(confirm) {
			fmt.Println("Aborted.")
			return nil
		}
		fmt.Println("Session cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionIdeaCmd)
	sessionCmd.AddCommand(sessionClearCmd)

	sessionShowCmd.Flags().Bool("json", false, "Print the session as JSON")
	sessionClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}
