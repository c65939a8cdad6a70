package main

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type authResult struct {
	FarmerID int64  `json:"farmerId"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Token    string `json:"token"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		apiURL    string
		tokenPath string
		client    *apiClient
	)

	root := &cobra.Command{
		Use:           "krishisakhi",
		Short:         "Command line client for the Krishi Sakhi farming assistant",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			client = newAPIClient(apiURL, tokenPath)
		},
	}

	defaultURL := os.Getenv("KRISHISAKHI_API")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "API base URL (env KRISHISAKHI_API)")
	root.PersistentFlags().StringVar(&tokenPath, "token-file", defaultTokenPath(), "where the bearer token is stored")

	api := func() *apiClient { return client }
	root.AddCommand(
		newAuthCmd(api),
		newFarmsCmd(api),
		newActivitiesCmd(api),
		newChatCmd(api),
		newWeatherCmd(api),
		newKnowledgeCmd(api),
	)
	return root
}

func newAuthCmd(api func() *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "auth", Short: "Register, log in and out"}

	var reg struct{ name, phone, email, password, location, language string }
	register := &cobra.Command{
		Use:   "register",
		Short: "Create a farmer account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var res authResult
			err := api().call(http.MethodPost, "/api/auth/register", map[string]string{
				"name": reg.name, "phone": reg.phone, "email": reg.email,
				"password": reg.password, "location": reg.location, "language": reg.language,
			}, &res)
			if err != nil {
				return err
			}
			if err := api().saveToken(res.Token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Registered %s (farmer %d)\n", res.Name, res.FarmerID)
			return nil
		},
	}
	register.Flags().StringVar(&reg.name, "name", "", "full name")
	register.Flags().StringVar(&reg.phone, "phone", "", "phone number")
	register.Flags().StringVar(&reg.email, "email", "", "email address")
	register.Flags().StringVar(&reg.password, "password", "", "password")
	register.Flags().StringVar(&reg.location, "location", "", "district or village")
	register.Flags().StringVar(&reg.language, "language", "en", "en or ml")
	for _, f := range []string{"name", "phone", "email", "password"} {
		_ = register.MarkFlagRequired(f)
	}

	var phone, password string
	login := &cobra.Command{
		Use:   "login",
		Short: "Log in with phone and password",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var res authResult
			if err := api().call(http.MethodPost, "/api/auth/login", map[string]string{"phone": phone, "password": password}, &res); err != nil {
				return err
			}
			if err := api().saveToken(res.Token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in as %s\n", res.Name)
			return nil
		},
	}
	login.Flags().StringVar(&phone, "phone", "", "phone number")
	login.Flags().StringVar(&password, "password", "", "password")
	_ = login.MarkFlagRequired("phone")
	_ = login.MarkFlagRequired("password")

	demo := &cobra.Command{
		Use:   "demo",
		Short: "Log in as the shared demo farmer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var res authResult
			if err := api().call(http.MethodPost, "/api/auth/demo-login", nil, &res); err != nil {
				return err
			}
			if err := api().saveToken(res.Token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in as %s\n", res.Name)
			return nil
		},
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := api().clearToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
			return nil
		},
	}

	who := &cobra.Command{
		Use:   "who",
		Short: "Show the logged-in farmer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var me map[string]any
			if err := api().call(http.MethodGet, "/api/farmers/me", nil, &me); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%v (%v) %v, language %v\n", me["name"], me["phone"], me["location"], me["language"])
			return nil
		},
	}

	cmd.AddCommand(register, login, demo, logout, who)
	return cmd
}

func newFarmsCmd(api func() *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "farms", Short: "Manage farms"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your farms",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var farms []map[string]any
			if err := api().call(http.MethodGet, "/api/farms", nil, &farms); err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tLOCATION\tHECTARES\tCROPS")
			for _, f := range farms {
				fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", f["id"], f["name"], f["location"], f["landSize"], f["cropTypes"])
			}
			return w.Flush()
		},
	}

	var farm struct {
		name, location, soil, irrigation string
		size                             float64
		crops                            []string
	}
	create := &cobra.Command{
		Use:   "create",
		Short: "Add a farm",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out map[string]int64
			err := api().call(http.MethodPost, "/api/farms", map[string]any{
				"name": farm.name, "location": farm.location, "landSize": farm.size,
				"soilType": farm.soil, "irrigationType": farm.irrigation, "cropTypes": farm.crops,
			}, &out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Farm %d created\n", out["farmId"])
			return nil
		},
	}
	create.Flags().StringVar(&farm.name, "name", "", "farm name")
	create.Flags().StringVar(&farm.location, "location", "", "location")
	create.Flags().Float64Var(&farm.size, "size", 0, "land size in hectares")
	create.Flags().StringVar(&farm.soil, "soil", "", "soil type")
	create.Flags().StringVar(&farm.irrigation, "irrigation", "", "irrigation type")
	create.Flags().StringSliceVar(&farm.crops, "crops", nil, "comma separated crops")
	_ = create.MarkFlagRequired("name")

	cmd.AddCommand(list, create)
	return cmd
}

func newActivitiesCmd(api func() *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "activities", Short: "Log and review farm activities"}

	var farmID int64
	query := func() string {
		if farmID == 0 {
			return ""
		}
		return "?farmId=" + strconv.FormatInt(farmID, 10)
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List activities, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var items []map[string]any
			if err := api().call(http.MethodGet, "/api/activities"+query(), nil, &items); err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tFARM\tTYPE\tCOST")
			for _, a := range items {
				cost := a["cost"]
				if cost == nil {
					cost = "-"
				}
				fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", a["id"], a["date"], a["farmName"], a["activityType"], cost)
			}
			return w.Flush()
		},
	}
	list.Flags().Int64Var(&farmID, "farm", 0, "only this farm")

	var act struct {
		kind, description, date string
		cost                    float64
	}
	add := &cobra.Command{
		Use:   "add",
		Short: "Log an activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			body := map[string]any{
				"farmId": farmID, "activityType": act.kind, "description": act.description, "date": act.date,
			}
			if cmd.Flags().Changed("cost") {
				body["cost"] = act.cost
			}
			var out map[string]int64
			if err := api().call(http.MethodPost, "/api/activities", body, &out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Activity %d logged\n", out["activityId"])
			return nil
		},
	}
	add.Flags().Int64Var(&farmID, "farm", 0, "farm id")
	add.Flags().StringVar(&act.kind, "type", "", "activity type")
	add.Flags().StringVar(&act.description, "description", "", "what was done")
	add.Flags().StringVar(&act.date, "date", "", "YYYY-MM-DD")
	add.Flags().Float64Var(&act.cost, "cost", 0, "cost in rupees")
	for _, f := range []string{"farm", "type", "date"} {
		_ = add.MarkFlagRequired(f)
	}

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Download activities as an Excel workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := api().download("/api/activities/export"+query(), out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s\n", out)
			return nil
		},
	}
	export.Flags().Int64Var(&farmID, "farm", 0, "only this farm")
	export.Flags().StringVarP(&out, "output", "o", "activities.xlsx", "output file")

	cmd.AddCommand(list, add, export)
	return cmd
}

func newChatCmd(api func() *apiClient) *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "chat <question>",
		Short: "Ask the farming assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var reply struct {
				Response string `json:"response"`
			}
			err := api().call(http.MethodPost, "/api/chat", map[string]string{
				"message": strings.Join(args, " "), "language": language,
			}, &reply)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Response)
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "en", "en or ml")
	return cmd
}

func newWeatherCmd(api func() *apiClient) *cobra.Command {
	var location, language string
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Show the forecast and farming advice",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params := url.Values{}
			if location != "" {
				params.Set("location", location)
			}
			if language != "" {
				params.Set("language", language)
			}
			path := "/api/weather"
			if len(params) > 0 {
				path += "?" + params.Encode()
			}

			var report struct {
				Location string `json:"location"`
				Days     []struct {
					Date        string `json:"date"`
					Description string `json:"description"`
					Temperature struct {
						Max int `json:"max"`
						Min int `json:"min"`
					} `json:"temperature"`
					Rainfall float64 `json:"rainfall"`
				} `json:"forecast"`
				Advisories []struct {
					Priority string `json:"priority"`
					Message  string `json:"message"`
				} `json:"advisories"`
			}
			if err := api().call(http.MethodGet, path, nil, &report); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Forecast for %s\n", report.Location)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, d := range report.Days {
				fmt.Fprintf(w, "%s\t%d-%d°C\t%.1fmm\t%s\n", d.Date, d.Temperature.Min, d.Temperature.Max, d.Rainfall, d.Description)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			for _, a := range report.Advisories {
				fmt.Fprintf(out, "[%s] %s\n", a.Priority, a.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&location, "location", "", "defaults to your profile location")
	cmd.Flags().StringVarP(&language, "language", "l", "", "en or ml")
	return cmd
}

func newKnowledgeCmd(api func() *apiClient) *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:       "knowledge <crops|diseases|schemes>",
		Short:     "Browse the knowledge base",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"crops", "diseases", "schemes"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var articles []struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				URL         string `json:"url"`
			}
			path := "/api/knowledge/" + url.PathEscape(args[0]) + "?language=" + url.QueryEscape(language)
			if err := api().call(http.MethodGet, path, nil, &articles); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, a := range articles {
				fmt.Fprintf(out, "• %s\n  %s\n", a.Title, a.Description)
				if a.URL != "" {
					fmt.Fprintf(out, "  %s\n", a.URL)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "en", "en or ml")
	return cmd
}
