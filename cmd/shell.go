package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/marketerz/marketerz/internal/controller"
	"github.com/marketerz/marketerz/internal/utils"
	"github.com/marketerz/marketerz/pkg/prompts"
	"github.com/spf13/cobra"
)

const shellHelp = `Commands:
  idea <text>            replace the idea
  generate               generate prompts for the idea
  regen <category>       regenerate one category
  image <category> [f]   render the category's prompt as an image (to file f)
  share <category>       print a share link for one prompt
  show [category]        print the prompts, or one prompt in full
  examples | example <n> list or use an example idea
  templates [query]      list templates, template <n> uses one
  history                toggle the history panel
  select <id>            restore a past run
  settings               toggle the settings panel
  temp <0.0-1.0>         set the temperature
  toggle <category>      select or deselect a category
  clear                  clear the session (asks first)
  clearhistory           remove every past run
  status                 print the current state
  quit                   save and leave`

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session with autosave",
	Long: `Interactive session with autosave. Every change to the idea or the prompts is saved after a
short quiet period. Pass --link to start from a share link instead of the saved draft.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		link, _ := cmd.Flags().GetString("link")

		a, err := openApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.close()

		if cleaned := a.ctrl.Start(link); link != "" {
			if a.ctrl.State().FromShareLink {
				fmt.Printf("Opened shared prompt from %s\n", cleaned)
			} else {
				fmt.Println("The link did not carry a valid shared prompt, resuming your draft.")
			}
		}

		in := bufio.NewReader(os.Stdin)
		sh := &shell{ctrl: a.ctrl, in: in, out: os.Stdout}
		return sh.run(cmd.Context())
	},
}

type shell struct {
	ctrl *controller.Controller
	in   *bufio.Reader
	out  io.Writer
}

func (s *shell) run(ctx context.Context) error {
	fmt.Fprintln(s.out, LOGO+"Type 'help' for commands.")
	s.render()
	for {
		fmt.Fprint(s.out, "marketerz> ")
		line, err := s.in.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}

		name, rest := splitCommand(line)
		if name == "" {
			continue
		}
		if name == "quit" || name == "exit" {
			return nil
		}
		if err := s.exec(ctx, name, rest); err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
		}
	}
}

func (s *shell) exec(ctx context.Context, name, rest string) error {
	switch name {
	case "help":
		fmt.Fprintln(s.out, shellHelp)
	case "idea":
		s.ctrl.SetIdea(rest)
	case "generate":
		fmt.Fprintln(s.out, "Generating...")
		if _, err := s.ctrl.Generate(ctx); err != nil {
			utils.Log.Debugf("generate: %v", err)
		}
		s.render()
	case "regen":
		c, err := prompts.ParseCategory(rest)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Regenerating %s...\n", c)
		if _, err := s.ctrl.Regenerate(ctx, c); err != nil {
			utils.Log.Debugf("regenerate: %v", err)
		}
		s.render()
	case "image":
		return s.image(ctx, rest)
	case "share":
		c, err := prompts.ParseCategory(rest)
		if err != nil {
			return err
		}
		link, err := s.ctrl.ShareLink(c)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, link)
	case "show":
		st := s.ctrl.State()
		if rest == "" {
			printPrompts(s.out, st.Prompts, false)
			return nil
		}
		c, err := prompts.ParseCategory(rest)
		if err != nil {
			return err
		}
		p, ok := prompts.FindByCategory(st.Prompts, c)
		if !ok {
			return fmt.Errorf("there is no %s prompt in the current session", c)
		}
		printPrompt(s.out, p, false)
	case "examples":
		printExamples(s.out)
	case "example":
		ex, err := findExample(rest)
		if err != nil {
			return err
		}
		s.ctrl.SelectExample(ex)
		s.render()
	case "templates":
		printTemplates(s.out, prompts.FilterTemplates(prompts.Templates(), prompts.TemplateFilter{Query: rest}))
	case "template":
		t, err := findTemplate(rest)
		if err != nil {
			return err
		}
		s.ctrl.SelectTemplate(t)
		s.render()
	case "history":
		s.ctrl.ToggleHistory()
		s.render()
	case "select":
		if _, ok := s.ctrl.SelectHistoryItem(rest); !ok {
			return fmt.Errorf("no history item with id %s", rest)
		}
		s.render()
	case "settings":
		s.ctrl.ToggleSettings()
		s.render()
	case "temp":
		t, err := strconv.ParseFloat(rest, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		return s.ctrl.SetTemperature(t)
	case "toggle":
		c, err := prompts.ParseCategory(rest)
		if err != nil {
			return err
		}
		return s.ctrl.ToggleCategory(c)
	case "clear":
		if s.ctrl.ClearSession(promptConfirmer(s.in, s.out)) {
			fmt.Fprintln(s.out, "Session cleared.")
		}
	case "clearhistory":
		s.ctrl.ClearHistory()
		fmt.Fprintln(s.out, "History cleared.")
	case "status":
		s.render()
	default:
		return fmt.Errorf("unknown command %q, type 'help'", name)
	}
	return nil
}

func (s *shell) image(ctx context.Context, rest string) error {
	fields := strings.Fields(rest)
	file := ""
	// the file name is optional and categories contain spaces
	if len(fields) > 1 {
		if _, err := prompts.ParseCategory(rest); err != nil {
			file = fields[len(fields)-1]
			rest = strings.Join(fields[:len(fields)-1], " ")
		}
	}
	c, err := prompts.ParseCategory(rest)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Generating image for %s...\n", c)
	img, err := s.ctrl.GenerateImage(ctx, c)
	if err != nil {
		return err
	}
	if file == "" {
		fmt.Fprintln(s.out, img.DataURL())
		return nil
	}
	if err := os.WriteFile(file, img.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	fmt.Fprintf(s.out, "Image written to %s\n", file)
	return nil
}

func (s *shell) render() {
	st := s.ctrl.State()

	fmt.Fprintln(s.out)
	idea := st.Idea
	if strings.TrimSpace(idea) == "" {
		idea = "(empty)"
	}
	fmt.Fprintf(s.out, "Idea: %s\n", utils.Truncate(idea, 100))
	for _, p := range st.Prompts {
		marker := " "
		if _, ok := st.Images[p.Category]; ok {
			marker = "*"
		}
		fmt.Fprintf(s.out, " %s %-15s %s\n", marker, p.Category, utils.Truncate(p.Purpose, 80))
	}
	if st.Error != "" {
		fmt.Fprintf(s.out, "Error: %s\n", st.Error)
	}
	fmt.Fprintf(s.out, "Autosave: %s\n", st.SaveStatus)

	if st.ShowSettings {
		fmt.Fprintln(s.out, "\n-- Settings --")
		printSettings(s.out, st.Settings)
	}
	if st.ShowHistory {
		fmt.Fprintln(s.out, "\n-- History --")
		printHistory(s.out, st.History, st.ActiveHistoryID)
	}
	fmt.Fprintln(s.out)
}

func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}
	name, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(name), strings.TrimSpace(rest)
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().String("link", "", "Start from a share link")
}
