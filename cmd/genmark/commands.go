package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/jask/genmark/internal/api"
	"github.com/jask/genmark/internal/export"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func analyzeCmd(c *cli) *cobra.Command {
	var kind, provider string
	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze a competitor's content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.AnalyzeRequest{CompetitorURL: strings.TrimSpace(args[0])}
			if req.CompetitorURL == "" {
				return fmt.Errorf("competitor url is empty")
			}
			var err error
			if req.AnalysisType, err = api.ParseAnalysisType(orDefault(kind, c.cfg.UI.DefaultAnalysisType)); err != nil {
				return err
			}
			if req.Provider, err = api.ParseProvider(orDefault(provider, c.cfg.UI.DefaultProvider)); err != nil {
				return err
			}
			a, err := c.client.AnalyzeCompetitor(cmd.Context(), req)
			if err != nil {
				return err
			}
			printAnalysis(cmd.OutOrStdout(), a)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "type", "t", "", "analysis type: blog, social or website")
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "LLM provider")
	return cmd
}

func analysesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "analyses [id]",
		Short: "List analyses, or show one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				a, err := c.client.GetAnalysis(cmd.Context(), id)
				if err != nil {
					return err
				}
				printAnalysis(out, a)
				return nil
			}
			as, err := c.client.ListAnalyses(cmd.Context())
			if err != nil {
				return err
			}
			if len(as) == 0 {
				fmt.Fprintln(out, "No analyses.")
			}
			for _, a := range as {
				fmt.Fprintf(out, "%-5d %-8s %-9s %s  %s\n", a.ID, a.AnalysisType, a.Provider, a.CreatedAt.Display(), a.CompetitorURL)
			}
			return nil
		},
	}
}

func printAnalysis(w io.Writer, a api.Analysis) {
	fmt.Fprintf(w, "Analysis #%d\n", a.ID)
	fmt.Fprintf(w, "URL:      %s\n", a.CompetitorURL)
	fmt.Fprintf(w, "Type:     %s\n", a.AnalysisType.DisplayName())
	fmt.Fprintf(w, "Provider: %s\n", a.Provider.DisplayName())
	fmt.Fprintln(w, "Themes:")
	for _, t := range a.ContentThemes {
		fmt.Fprintf(w, "  - %s\n", t.Label())
	}
	fmt.Fprintln(w, "Strategy:")
	for _, s := range a.ContentStrategy {
		fmt.Fprintf(w, "  - %s\n", s)
	}
}

func promptsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Prompt ideas derived from analyses",
	}

	var analysisID int64
	list := &cobra.Command{
		Use:   "list",
		Short: "List prompt ideas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := c.client.ListPromptIdeas(cmd.Context(), analysisID)
			if err != nil {
				return err
			}
			printPrompts(cmd.OutOrStdout(), ps)
			return nil
		},
	}
	list.Flags().Int64Var(&analysisID, "analysis", 0, "only ideas for this analysis")

	var provider string
	var num int
	generate := &cobra.Command{
		Use:   "generate <analysis-id>",
		Short: "Generate prompt ideas from an analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := api.ParseProvider(orDefault(provider, c.cfg.UI.DefaultProvider))
			if err != nil {
				return err
			}
			if num == 0 {
				num = c.cfg.UI.DefaultNumIdeas
			}
			if num < 1 || num > 10 {
				return fmt.Errorf("number of ideas must be between 1 and 10")
			}
			ps, err := c.client.GeneratePromptIdeas(cmd.Context(), api.GeneratePromptsRequest{AnalysisID: id, Provider: p, NumIdeas: num})
			if err != nil {
				return err
			}
			printPrompts(cmd.OutOrStdout(), ps)
			return nil
		},
	}
	generate.Flags().StringVarP(&provider, "provider", "p", "", "LLM provider")
	generate.Flags().IntVarP(&num, "num", "n", 0, "number of ideas (1-10)")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one prompt idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			p, err := c.client.GetPromptIdea(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Prompt #%d (analysis %d, %s, %s)\n%s\n", p.ID, p.AnalysisID, p.Provider.DisplayName(), p.ConfidenceLabel(), p.PromptText)
			return nil
		},
	}

	cmd.AddCommand(list, generate, show)
	return cmd
}

func printPrompts(w io.Writer, ps []api.PromptIdea) {
	if len(ps) == 0 {
		fmt.Fprintln(w, "No prompt ideas.")
	}
	for _, p := range ps {
		fmt.Fprintf(w, "%-5d %-5d [%s] %s\n", p.ID, p.AnalysisID, p.ConfidenceLabel(), p.PromptText)
	}
}

func contentCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Generated content",
	}

	var ctype, provider, length, tone string
	generate := &cobra.Command{
		Use:   "generate <prompt-id>",
		Short: "Generate content from a prompt idea",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			req := api.GenerateContentRequest{PromptID: id}
			if req.ContentType, err = api.ParseContentType(orDefault(ctype, c.cfg.UI.DefaultContentType)); err != nil {
				return err
			}
			if req.Provider, err = api.ParseProvider(orDefault(provider, c.cfg.UI.DefaultProvider)); err != nil {
				return err
			}
			l, err := api.ParseLength(length)
			if err != nil {
				return err
			}
			t, err := api.ParseTone(tone)
			if err != nil {
				return err
			}
			req.Parameters = api.ContentParameters(l, t)
			ct, err := c.client.GenerateContent(cmd.Context(), req)
			if err != nil {
				return err
			}
			printContent(cmd.OutOrStdout(), ct)
			return nil
		},
	}
	generate.Flags().StringVarP(&ctype, "type", "t", "", "content type: text, image or text+image")
	generate.Flags().StringVarP(&provider, "provider", "p", "", "LLM provider")
	generate.Flags().StringVar(&length, "length", string(api.LengthMedium), "short, medium or long")
	generate.Flags().StringVar(&tone, "tone", string(api.ToneProfessional), "professional, casual or enthusiastic")

	var promptID int64
	list := &cobra.Command{
		Use:   "list",
		Short: "List generated content",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cs, err := c.client.ListContent(cmd.Context(), promptID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(cs) == 0 {
				fmt.Fprintln(out, "No content.")
			}
			for _, ct := range cs {
				fmt.Fprintf(out, "%-5d %-5d %-10s %-9s %s\n", ct.ID, ct.PromptID, ct.ContentType, ct.Provider, ct.CreatedAt.Display())
			}
			return nil
		},
	}
	list.Flags().Int64Var(&promptID, "prompt", 0, "only content for this prompt idea")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one content record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := getContent(cmd, c, args[0])
			if err != nil {
				return err
			}
			printContent(cmd.OutOrStdout(), ct)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a content record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := c.client.DeleteContent(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted content %d\n", id)
			return nil
		},
	}

	var dir string
	exp := &cobra.Command{
		Use:   "export <id>",
		Short: "Write content text to content-<id>.txt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := getContent(cmd, c, args[0])
			if err != nil {
				return err
			}
			path, err := export.WriteContent(orDefault(dir, c.cfg.Export.Dir), ct)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	exp.Flags().StringVar(&dir, "dir", "", "output directory (default export.dir)")

	open := &cobra.Command{
		Use:   "open <id>",
		Short: "Open the content URL in the browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := getContent(cmd, c, args[0])
			if err != nil {
				return err
			}
			if ct.ContentURL == "" {
				return fmt.Errorf("content %d has no url", ct.ID)
			}
			return browser.OpenURL(ct.ContentURL)
		},
	}

	cmd.AddCommand(generate, list, show, del, exp, open)
	return cmd
}

func getContent(cmd *cobra.Command, c *cli, arg string) (api.Content, error) {
	id, err := parseID(arg)
	if err != nil {
		return api.Content{}, err
	}
	return c.client.GetContent(cmd.Context(), id)
}

func printContent(w io.Writer, ct api.Content) {
	fmt.Fprintf(w, "Content #%d (prompt %d, %s, %s)\n", ct.ID, ct.PromptID, ct.ContentType.DisplayName(), ct.Provider.DisplayName())
	if ct.ContentText != "" {
		fmt.Fprintln(w, ct.ContentText)
	}
	if ct.ContentURL != "" {
		fmt.Fprintf(w, "URL: %s\n", ct.ContentURL)
	}
}

func keysCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Provider API keys stored by the backend",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show which providers have a key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := c.client.ListAPIKeys(cmd.Context())
			if err != nil {
				return err
			}
			active := map[api.Provider]bool{}
			for _, k := range keys {
				active[k.Provider] = active[k.Provider] || k.IsActive
			}
			for _, p := range api.Providers {
				status := "not configured"
				if active[p] {
					status = "configured"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", p.DisplayName(), status)
			}
			return nil
		},
	}, &cobra.Command{
		Use:   "set <provider> <key>",
		Short: "Store an API key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := api.ParseProvider(args[0])
			if err != nil {
				return err
			}
			key := strings.TrimSpace(args[1])
			if key == "" || strings.Contains(key, "*") {
				return fmt.Errorf("please enter a valid API key")
			}
			if _, err := c.client.SetAPIKey(cmd.Context(), p, key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s API key updated successfully\n", p.DisplayName())
			return nil
		},
	}, &cobra.Command{
		Use:   "delete <provider>",
		Short: "Remove an API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := api.ParseProvider(args[0])
			if err != nil {
				return err
			}
			if _, err := c.client.DeleteAPIKey(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s API key removed\n", p.DisplayName())
			return nil
		},
	})
	return cmd
}

func settingsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Backend configuration values",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configuration values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgs, err := c.client.ListConfigurations(cmd.Context())
			if err != nil {
				return err
			}
			for _, cf := range cfgs {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %-12s %s\n", cf.Key, cf.Value, cf.Description)
			}
			return nil
		},
	})

	var description string
	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if description == "" {
				description = api.ConfigDescription(key)
			}
			if _, err := c.client.SetConfiguration(cmd.Context(), key, args[1], description); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, args[1])
			return nil
		},
	}
	set.Flags().StringVar(&description, "description", "", "description stored with the value")
	cmd.AddCommand(set)
	return cmd
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
