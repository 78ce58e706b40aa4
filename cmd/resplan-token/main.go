// Command resplan-token issues an access token for a calendar
// principal, for use from deployment scripts and manual testing.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/resplan/resplan-backend/internal/config"
	"github.com/resplan/resplan-backend/internal/pkg/jwt"
)

func main() {
	principal := flag.String("principal", "", "calendar principal to issue the token for")
	flag.Parse()

	if *principal == "" {
		log.Fatal("principal must be provided")
	}
	if config.Secret() == "" {
		log.Fatal("SECRET must be set")
	}

	token, err := jwt.NewManger().CreateToken(*principal)
	if err != nil {
		log.Fatalf("unable to create token: %v", err)
	}

	fmt.Println(token)
}
