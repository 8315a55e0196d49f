// Command tokengen mints a staff JWT for calling the API by hand.
package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/config"
	"github.com/diyoadisuta/SistemInformasiGadaiBiru/internal/middleware"
)

func main() {
	flags := pflag.NewFlagSet("tokengen", pflag.ExitOnError)
	flags.Int64("user-id", 0, "staff user id to put in the token")
	flags.Duration("ttl", 0, "token lifetime (defaults to JWT_EXPIRY_HOURS)")
	flags.String("env", ".env", "path to the .env file")
	flags.Parse(os.Args[1:])

	envPath, _ := flags.GetString("env")
	cfg := config.Load(envPath)

	viper.BindPFlag("tokengen.user_id", flags.Lookup("user-id"))
	viper.BindPFlag("tokengen.ttl", flags.Lookup("ttl"))

	userID := viper.GetInt64("tokengen.user_id")
	if userID <= 0 {
		log.Fatal("[TOKENGEN] --user-id is required")
	}
	if cfg.JWT.SecretKey == "" {
		log.Fatal("[TOKENGEN] JWT_SECRET_KEY is not set")
	}

	ttl := viper.GetDuration("tokengen.ttl")
	if ttl <= 0 {
		ttl = time.Duration(cfg.JWT.ExpiryHours) * time.Hour
	}

	token, err := middleware.IssueToken([]byte(cfg.JWT.SecretKey), userID, ttl)
	if err != nil {
		log.Fatalf("[TOKENGEN] Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
