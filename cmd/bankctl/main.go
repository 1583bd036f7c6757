// Command bankctl performs operator tasks against the bank database:
// registering users and opening accounts, which the API itself doesn't
// expose.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/aussiebroadwan/teller/internal/bank/app"
	"github.com/aussiebroadwan/teller/internal/bank/domain"
	"github.com/aussiebroadwan/teller/internal/bank/service"
	"github.com/aussiebroadwan/teller/pkg/cryptox"
	"github.com/joho/godotenv"
)

const usage = `usage: bankctl <command> [flags]

commands:
  create-user         -email E [-password P] [-inactive]
  activate-user       -email E
  deactivate-user     -email E
  unlock-user         -email E
  open-account        -email E [-currency AUD] [-status inactive]
  set-account-status  -number N -status S
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "bankctl:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("no command given")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read .env: %w", err)
	}

	cfg := app.LoadConfig()
	cryptox.SetPepperPath(cfg.PepperFile)

	ctx := context.Background()
	st, err := app.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	admin := &service.AdminService{Store: st}
	cmd, rest := args[0], args[1:]
	fset := flag.NewFlagSet(cmd, flag.ContinueOnError)

	switch cmd {
	case "create-user":
		email := fset.String("email", "", "user email")
		password := fset.String("password", "", "password, generated when empty")
		inactive := fset.Bool("inactive", false, "create the user inactive")
		if err := fset.Parse(rest); err != nil {
			return err
		}

		u, pw, err := admin.CreateUser(ctx, *email, *password, !*inactive)
		if err != nil {
			return err
		}
		fmt.Printf("user_id=%s email=%s active=%t\n", u.ID, u.Email, u.Active)
		if *password == "" {
			fmt.Printf("password=%s\n", pw)
		}

	case "activate-user", "deactivate-user":
		email := fset.String("email", "", "user email")
		if err := fset.Parse(rest); err != nil {
			return err
		}
		if err := admin.SetUserActive(ctx, *email, cmd == "activate-user"); err != nil {
			return err
		}
		fmt.Println("ok")

	case "unlock-user":
		email := fset.String("email", "", "user email")
		if err := fset.Parse(rest); err != nil {
			return err
		}
		if err := admin.UnlockUser(ctx, *email); err != nil {
			return err
		}
		fmt.Println("ok")

	case "open-account":
		email := fset.String("email", "", "holder email")
		currency := fset.String("currency", service.DefaultCurrency, "ISO currency code")
		status := fset.String("status", string(domain.AccountInactive), "initial status")
		if err := fset.Parse(rest); err != nil {
			return err
		}

		a, err := admin.OpenAccount(ctx, *email, *currency, domain.AccountStatus(*status))
		if err != nil {
			return err
		}
		fmt.Printf("account_number=%s currency=%s status=%s\n", a.AccountNumber, a.Currency, a.Status)

	case "set-account-status":
		number := fset.String("number", "", "account number")
		status := fset.String("status", "", "active, inactive, frozen or closed")
		if err := fset.Parse(rest); err != nil {
			return err
		}
		if err := admin.SetAccountStatus(ctx, *number, domain.AccountStatus(*status)); err != nil {
			return err
		}
		fmt.Println("ok")

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	return nil
}
