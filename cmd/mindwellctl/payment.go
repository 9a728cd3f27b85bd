package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/mindwell/internal/lib/sl"
	"github.com/magabrotheeeer/mindwell/internal/paymentprovider"
	paymentservice "github.com/magabrotheeeer/mindwell/internal/services/payment"
)

func paymentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Payment maintenance",
	}
	cmd.AddCommand(reconcileCmd())
	return cmd
}

func reconcileCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "reconcile [reference]",
		Short: "Apply a confirmed gateway payment to the user with the given email",
		Long: `Verifies the transaction with the payment gateway and records it for the
user owning --email. Used for webhook deliveries whose customer email did not
match any account. Running it twice for the same reference is safe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openStorage()
			if err != nil {
				return err
			}
			defer db.Close()

			logger := sl.SetupLogger(cfg.Env)
			svc := paymentservice.New(db, paymentprovider.NewClient(cfg.Paystack, logger), paymentservice.Settings{
				WebhookSecret: cfg.WebhookSecret(),
				PlanAmount:    cfg.PlanAmount,
				PlanCurrency:  cfg.PlanCurrency,
				CallbackURL:   cfg.PaystackCallbackURL,
			}, logger)

			view, err := svc.Reconcile(cmd.Context(), args[0], email)
			if err != nil {
				return fmt.Errorf("reconcile %s: %w", args[0], err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(view)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "customer email the payment belongs to")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
