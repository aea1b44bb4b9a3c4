package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/franciscosanchezn/gin-recipes-api/internal/config"
	"github.com/franciscosanchezn/gin-recipes-api/internal/database"
	"github.com/franciscosanchezn/gin-recipes-api/internal/models"
	"github.com/franciscosanchezn/gin-recipes-api/internal/services"
)

func main() {
	// Parse command line flags
	role := flag.String("role", "admin", "User role (admin or user)")
	password := flag.String("password", "dev-password-123", "Password of the development user")
	confidential := flag.Bool("confidential", false, "Also register a confidential OAuth2 client owned by the user")
	flag.Parse()

	if *role != models.RoleAdmin && *role != models.RoleUser {
		log.Fatalf("Unknown role %q (admin or user)", *role)
	}

	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	ctx := context.Background()
	db, err := database.InitDatabase(ctx, database.NewDatabaseConfig(conf))
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	clients := services.NewClientService(db)
	if err := clients.EnsurePublicClient(ctx, conf.OAuthClientID, "Recipes web"); err != nil {
		log.Fatal("Failed to register public client:", err)
	}

	user := getOrCreateUser(ctx, services.NewUserService(db), *role, *password)

	fmt.Printf("Development user ready for role '%s'!\n", *role)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Password: %s\n", *password)
	fmt.Printf("User ID: %d\n", user.ID)
	fmt.Println("\nLog in with:")
	fmt.Printf("curl -X POST http://localhost:%d/api/auth/token/login \\\n", conf.Port)
	fmt.Printf("  -H 'Content-Type: application/json' \\\n")
	fmt.Printf("  -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", user.Email, *password)

	if !*confidential {
		return
	}

	client, secret, err := clients.CreateClient(ctx, user.ID, services.ClientInput{
		Name:   fmt.Sprintf("Development %s Client", *role),
		Domain: "http://localhost",
		Scopes: "read write",
	})
	if err != nil {
		log.Fatal("Failed to create client:", err)
	}

	fmt.Println("\nConfidential OAuth2 client created:")
	fmt.Printf("Client ID: %s\n", client.ID)
	fmt.Printf("Client Secret: %s\n", secret)
	fmt.Printf("curl -X POST http://localhost:%d/api/oauth/token \\\n", conf.Port)
	fmt.Printf("  -d 'grant_type=password' \\\n")
	fmt.Printf("  -d 'client_id=%s' \\\n", client.ID)
	fmt.Printf("  -d 'client_secret=%s' \\\n", secret)
	fmt.Printf("  -d 'username=%s' \\\n", user.Email)
	fmt.Printf("  -d 'password=%s'\n", *password)
}

// getOrCreateUser gets or creates a user with the specified role
func getOrCreateUser(ctx context.Context, users services.UserService, role, password string) *models.User {
	email := fmt.Sprintf("%s@recipes.local", role)

	// Try to find existing user
	if user, err := users.GetUserByEmail(ctx, email); err == nil {
		fmt.Printf("Found existing user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
		return user
	} else if !errors.Is(err, services.ErrNotFound) {
		log.Fatal("Failed to look up user:", err)
	}

	user := &models.User{
		Email:     email,
		Username:  role,
		FirstName: role,
		LastName:  "Developer",
		Password:  password,
		Role:      role,
	}
	if err := users.CreateUser(ctx, user); err != nil {
		log.Fatal("Failed to create user:", err)
	}

	fmt.Printf("Created new user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
	return user
}
