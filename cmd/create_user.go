package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/baotran/ragchat-be/config"
	"github.com/baotran/ragchat-be/database"
	"github.com/baotran/ragchat-be/repository"
	"github.com/baotran/ragchat-be/service"
	"github.com/baotran/ragchat-be/types"

	"github.com/spf13/cobra"
)

var createUserFlags struct {
	username   string
	password   string
	fullName   string
	role       string
	department string
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a user account",
	RunE: func(cmd *cobra.Command, args []string) error {
		if createUserFlags.username == "" || createUserFlags.password == "" {
			return fmt.Errorf("username and password are required")
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		mongoClient, err := database.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		defer mongoClient.Disconnect(ctx)

		users := mongoClient.Database(cfg.MongoDatabase).Collection("users")
		userService := service.NewUserService(repository.NewUserRepo(users))

		user := &types.User{
			Username:   createUserFlags.username,
			Password:   createUserFlags.password,
			FullName:   createUserFlags.fullName,
			Role:       createUserFlags.role,
			Department: createUserFlags.department,
		}
		if err := userService.CreateUser(ctx, user); err != nil {
			return err
		}
		fmt.Printf("created user %s (%s, department %s)\n", user.Username, user.Role, user.Department)
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&createUserFlags.username, "username", "", "login username")
	createUserCmd.Flags().StringVar(&createUserFlags.password, "password", "", "login password")
	createUserCmd.Flags().StringVar(&createUserFlags.fullName, "full-name", "", "display name")
	createUserCmd.Flags().StringVar(&createUserFlags.role, "role", types.USER_ROLE_USER, "user role (admin or user)")
	createUserCmd.Flags().StringVar(&createUserFlags.department, "department", "", "department (engineering, finance, hr, marketing)")
	rootCmd.AddCommand(createUserCmd)
}
