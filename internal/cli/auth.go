package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/nutricoach/internal/api"
)

func init() {
	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Run:   runLogin,
	}
	login.Flags().StringP("username", "u", "", "Username")
	login.Flags().String("email", "", "Email (legacy sign-in)")
	login.Flags().StringP("password", "p", "", "Password (required)")
	login.MarkFlagRequired("password")

	signup := &cobra.Command{
		Use:   "signup",
		Short: "Register a new account",
		Run:   runSignup,
	}
	signup.Flags().StringP("username", "u", "", "Username (required)")
	signup.Flags().StringP("password", "p", "", "Password (required)")
	signup.Flags().String("email", "", "Email")
	signup.Flags().String("name", "", "Display name")
	signup.Flags().Int("age", 0, "Age")
	signup.Flags().Float64("weight", 0, "Weight")
	signup.Flags().Float64("height", 0, "Height")
	signup.Flags().String("roles", "patient", "Comma-separated roles: patient, clinician")
	signup.MarkFlagRequired("username")
	signup.MarkFlagRequired("password")

	RootCmd.AddCommand(login, signup,
		&cobra.Command{Use: "logout", Short: "Forget the stored session", Run: runLogout},
		&cobra.Command{Use: "whoami", Short: "Show the stored session", Run: runWhoami},
	)
}

func runLogin(cmd *cobra.Command, args []string) {
	username, _ := cmd.Flags().GetString("username")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if username == "" && email == "" {
		exitErr("login", fmt.Errorf("--username or --email is required"))
	}

	a := openApp(cmd)
	defer a.close()
	a.requireBackend()

	sess, err := a.client.Auth.SignIn(cmd.Context(), api.SignInRequest{Username: username, Email: email, Password: password})
	if err != nil {
		exitErr("login", err)
	}
	if err := a.state.Set(cmd.Context(), sess); err != nil {
		exitErr("login", err)
	}
	printJSON(cmd, whoami(sess.Username, sess.Role, sess.PatientID, sess.ClinicianID))
}

func runSignup(cmd *cobra.Command, args []string) {
	f := cmd.Flags()
	req := api.SignUpRequest{}
	req.Username, _ = f.GetString("username")
	req.Password, _ = f.GetString("password")
	req.Email, _ = f.GetString("email")
	req.Name, _ = f.GetString("name")
	req.Age, _ = f.GetInt("age")
	req.Weight, _ = f.GetFloat64("weight")
	req.Height, _ = f.GetFloat64("height")
	roles, _ := f.GetString("roles")
	for _, r := range strings.Split(roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			req.Roles = append(req.Roles, r)
		}
	}

	a := openApp(cmd)
	defer a.close()
	a.requireBackend()

	if err := a.client.Auth.SignUp(cmd.Context(), req); err != nil {
		exitErr("signup", err)
	}
	printJSON(cmd, map[string]any{"ok": true, "username": req.Username})
}

func runLogout(cmd *cobra.Command, args []string) {
	a := openApp(cmd)
	defer a.close()
	if err := a.client.Logout(a.state); err != nil {
		exitErr("logout", err)
	}
	printJSON(cmd, map[string]any{"ok": true})
}

func runWhoami(cmd *cobra.Command, args []string) {
	a := openApp(cmd)
	defer a.close()
	s := a.state.Session()
	if !s.SignedIn() {
		printJSON(cmd, map[string]any{"signedIn": false})
		return
	}
	printJSON(cmd, whoami(s.Username, s.Role, s.PatientID, s.ClinicianID))
}

func whoami(username, role, patientID, clinicianID string) map[string]any {
	out := map[string]any{"signedIn": true, "username": username}
	if role != "" {
		out["role"] = role
	}
	if patientID != "" {
		out["patientId"] = patientID
	}
	if clinicianID != "" {
		out["clinicianId"] = clinicianID
	}
	return out
}
