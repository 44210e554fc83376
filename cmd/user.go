package cmd

import (
	"Pantry-Planner/cmd/config"
	"Pantry-Planner/domain"
	"Pantry-Planner/entities"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	flagUserName      string
	flagUserEmail     string
	flagUserAllergies string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage API users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user and print an access token",
	RunE:  runUserCreate,
}

var userTokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Print a fresh access token for an existing user",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserToken,
}

func init() {
	userCreateCmd.Flags().StringVar(&flagUserName, "name", "", "Display name")
	userCreateCmd.Flags().StringVar(&flagUserEmail, "email", "", "Email address, used for overspend notifications")
	userCreateCmd.Flags().StringVar(&flagUserAllergies, "allergies", "", "Comma separated allergens")
	_ = userCreateCmd.MarkFlagRequired("email")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userTokenCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserCreate(cmd *cobra.Command, _ []string) error {
	email := strings.TrimSpace(flagUserEmail)
	if email == "" {
		return errors.New("--email is required")
	}

	db, err := openDB(true)
	if err != nil {
		return err
	}
	services := config.NewServices(db)

	u := &entities.User{
		Name:      strings.TrimSpace(flagUserName),
		Email:     email,
		Allergies: strings.Join(domain.SplitTerms(flagUserAllergies), ", "),
	}
	if err := services.UserRepository.CreateUser(cmd.Context(), u); err != nil {
		return err
	}

	token, err := services.JWT.GenerateTokenUser(u.ID.String())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "user_id: %s\ntoken: %s\n", u.ID, token)
	return nil
}

func runUserToken(cmd *cobra.Command, args []string) error {
	db, err := openDB(false)
	if err != nil {
		return err
	}
	services := config.NewServices(db)

	profile, err := services.User.GetProfile(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	token, err := services.JWT.GenerateTokenUser(profile.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
