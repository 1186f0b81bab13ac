package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/terraincognita07/chitra/internal/db"
	"github.com/terraincognita07/chitra/internal/security"
	"github.com/terraincognita07/chitra/internal/services"
)

const temporaryPinLength = 6

var errPinMismatch = errors.New("pins do not match")

// RunResetPinCommand replaces the stored PIN with a random temporary one and
// prints it. The gate stays enabled.
func RunResetPinCommand(ctx context.Context, dbPath string, out io.Writer) error {
	return withSecurityService(ctx, dbPath, func(service *services.SecurityService) error {
		pin, err := generateTemporaryPin()
		if err != nil {
			return fmt.Errorf("generate temporary pin: %w", err)
		}
		if err := service.SetPin(ctx, pin); err != nil {
			return fmt.Errorf("store temporary pin: %w", err)
		}

		fmt.Fprintln(out, "✅ PIN reset successful")
		fmt.Fprintf(out, "Temporary PIN: %s\n", pin)
		fmt.Fprintln(out, "Change it from the security settings after unlocking.")
		return nil
	})
}

func RunDisablePinCommand(ctx context.Context, dbPath string, out io.Writer) error {
	return withSecurityService(ctx, dbPath, func(service *services.SecurityService) error {
		if err := service.DisablePin(ctx); err != nil {
			return fmt.Errorf("disable pin: %w", err)
		}
		fmt.Fprintln(out, "✅ PIN lock disabled")
		return nil
	})
}

// RunSetPinCommand prompts twice for a new PIN without echo.
func RunSetPinCommand(ctx context.Context, dbPath string, stdin *os.File, out io.Writer) error {
	prompt := func(label string) (string, error) {
		fmt.Fprint(out, label)
		pin, err := readPinNoEcho(stdin)
		fmt.Fprintln(out)
		return pin, err
	}
	return withSecurityService(ctx, dbPath, func(service *services.SecurityService) error {
		return setPinWithPrompt(ctx, service, prompt, out)
	})
}

func setPinWithPrompt(ctx context.Context, service *services.SecurityService, prompt func(label string) (string, error), out io.Writer) error {
	first, err := prompt("New PIN: ")
	if err != nil {
		return fmt.Errorf("read pin: %w", err)
	}
	if err := services.ValidatePinFormat(first); err != nil {
		return err
	}
	second, err := prompt("Repeat PIN: ")
	if err != nil {
		return fmt.Errorf("read pin: %w", err)
	}
	if first != second {
		return errPinMismatch
	}
	if err := service.SetPin(ctx, first); err != nil {
		return fmt.Errorf("store pin: %w", err)
	}
	fmt.Fprintln(out, "✅ PIN lock enabled")
	return nil
}

func withSecurityService(ctx context.Context, dbPath string, run func(service *services.SecurityService) error) error {
	store, err := db.OpenStore(ctx, dbPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()
	return run(services.NewSecurityService(store.Security))
}

func generateTemporaryPin() (string, error) {
	return security.RandomString(temporaryPinLength, security.Digits)
}
