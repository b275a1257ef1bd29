package main

import (
	"fmt"
	"strings"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reoring/dashschema/submit"
	"github.com/reoring/dashschema/wizard"
)

func submitCmd(a *app) *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Send configuration changes to a wizard server",
	}
	cmd.PersistentFlags().StringVar(&baseURL, "url", "", "wizard server base URL (overrides submit.base_url)")

	client := func() (*submit.Client, error) {
		sc := a.cfg.Submit
		if baseURL != "" {
			sc.BaseURL = baseURL
		}
		return submit.New(submit.Options{
			BaseURL:  sc.BaseURL,
			Timeout:  sc.Timeout,
			Retries:  sc.Retries,
			Username: sc.Username,
			Password: sc.Password,
		})
	}
	report := func(cmd *cobra.Command, fb wizard.Feedback, err error) error {
		if msg := fb.Message(time.Now()); msg != "" {
			fmt.Fprintln(cmd.OutOrStdout(), msg)
		}
		return err
	}

	var site wizard.Site
	siteFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&site.Title, "title", "", "site title")
		c.Flags().StringVar(&site.BriefDesc, "brief-desc", "", "site description")
		c.Flags().StringVar(&site.DataBackend, "backend", "", "data backend (psql, local_csv)")
	}

	mainCmd := &cobra.Command{
		Use:   "main FILE",
		Short: "Save the main config (FILE may be -)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			c, err := client()
			if err != nil {
				return err
			}
			fb, err := c.SaveMain(cmd.Context(), wizard.SaveMain{Config: gojson.RawMessage(doc)})
			return report(cmd, fb, err)
		},
	}

	var save wizard.SaveGraphic
	var status string
	graphicCmd := &cobra.Command{
		Use:   "graphic FILE",
		Short: "Save a graphic config in the editor's component form (FILE may be -)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			c, err := client()
			if err != nil {
				return err
			}
			save.Config = gojson.RawMessage(doc)
			save.Status = wizard.GraphicStatus(status)
			fb, err := c.SaveGraphic(cmd.Context(), save)
			return report(cmd, fb, err)
		},
	}
	graphicCmd.Flags().IntVar(&save.PageID, "page", 0, "page index")
	graphicCmd.Flags().StringVar(&status, "status", string(wizard.StatusNew), "graphic status (new, old, copy)")
	graphicCmd.Flags().StringVar(&save.GraphicPath, "path", "", "graphic file of an existing graphic")

	schemasCmd := &cobra.Command{
		Use:   "schemas SOURCE...",
		Short: "Fetch graphic schemas restricted to the given data sources",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			body, _, err := c.UpdateSchemas(cmd.Context(), wizard.UpdateSchemas{DataSources: args})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(body)
			return err
		},
	}

	var (
		addLabel      string
		deletePage    bool
		deleteGraphic string
		layoutPage    int
	)
	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "Add a page, delete a page, or remove a graphic from a page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := wizard.ModifyLayout{PageID: layoutPage, Site: site}
			switch {
			case addLabel != "":
				m.Modification, m.WebpageLabel = wizard.AddPage, addLabel
			case deleteGraphic != "":
				m.Modification, m.Graphic = wizard.DeleteGraphic, deleteGraphic
			case deletePage:
				m.Modification = wizard.DeletePage
			default:
				return fmt.Errorf("one of --add, --delete-page or --delete-graphic is required")
			}
			c, err := client()
			if err != nil {
				return err
			}
			fb, err := c.ModifyLayout(cmd.Context(), m)
			return report(cmd, fb, err)
		},
	}
	layoutCmd.Flags().StringVar(&addLabel, "add", "", "label of the page to add")
	layoutCmd.Flags().BoolVar(&deletePage, "delete-page", false, "delete the page given by --page")
	layoutCmd.Flags().StringVar(&deleteGraphic, "delete-graphic", "", "graphic file to remove from the page given by --page")
	layoutCmd.Flags().IntVar(&layoutPage, "page", -1, "page index")
	layoutCmd.MarkFlagsMutuallyExclusive("add", "delete-page", "delete-graphic")
	siteFlags(layoutCmd)

	var edit wizard.EditGraphic
	var editStatus string
	editCmd := &cobra.Command{
		Use:   "edit",
		Short: "Open the graphic editor for a graphic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			edit.Status = wizard.GraphicStatus(editStatus)
			edit.Site = site
			fb, err := c.EditGraphic(cmd.Context(), edit)
			return report(cmd, fb, err)
		},
	}
	editCmd.Flags().IntVar(&edit.PageID, "page", 0, "page index")
	editCmd.Flags().StringVar(&edit.Graphic, "graphic", "", "graphic file")
	editCmd.Flags().StringVar(&editStatus, "status", string(wizard.StatusOld), "graphic status (new, old, copy)")
	siteFlags(editCmd)

	resetCmd := &cobra.Command{
		Use:   "reset PAGE GRAPHIC_ID",
		Short: "Reset the selectors of a graphic on a dashboard page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			fb, err := c.ResetSelectors(cmd.Context(), wizard.ResetSelectors{Page: args[0], GraphicID: args[1]})
			return report(cmd, fb, err)
		},
	}

	uploadsCmd := &cobra.Command{
		Use:   "uploads SOURCE ID=active|inactive...",
		Short: "Switch uploads of a data source on or off",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			uploads, err := parseUploads(args[1:])
			if err != nil {
				return err
			}
			c, err := client()
			if err != nil {
				return err
			}
			fb, err := c.SetUploadActivation(cmd.Context(), wizard.UploadActivation{DataSource: args[0], Uploads: uploads})
			return report(cmd, fb, err)
		},
	}

	cmd.AddCommand(mainCmd, graphicCmd, schemasCmd, layoutCmd, editCmd, resetCmd, uploadsCmd)
	return cmd
}

func parseUploads(args []string) (map[string]bool, error) {
	out := make(map[string]bool, len(args))
	for _, arg := range args {
		id, state, ok := strings.Cut(arg, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("expected ID=active|inactive, got %q", arg)
		}
		switch state {
		case wizard.UploadActive:
			out[id] = true
		case wizard.UploadInactive:
			out[id] = false
		default:
			return nil, fmt.Errorf("unknown upload state %q", state)
		}
	}
	return out, nil
}
