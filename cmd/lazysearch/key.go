package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func keyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "store or remove the search service API key in the OS keyring",
	}
	cmd.AddCommand(keySetCmd(c), keyDeleteCmd(c))
	return cmd
}

// keyHost returns the host the key is stored under
func keyHost(c *cli, endpoint string) (string, error) {
	svc := c.resolveService()
	if endpoint != "" {
		svc.Endpoint = endpoint
	}
	if svc.Endpoint == "" {
		return "", fmt.Errorf("no search endpoint configured; pass --endpoint")
	}
	return svc.ServiceHost(), nil
}

func keySetCmd(c *cli) *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "read an API key from stdin and store it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			host, err := keyHost(c, endpoint)
			if err != nil {
				return err
			}

			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read api key: %w", err)
			}

			ks, err := c.keyStore()
			if err != nil {
				return err
			}
			if err := ks.Save(host, strings.TrimSpace(line)); err != nil {
				return err
			}
			if ks.IsUsingFallback() {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: no OS keyring found, key stored in an encrypted file")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored api key for %s\n", host)
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "service endpoint (default: resolved endpoint)")
	return cmd
}

func keyDeleteCmd(c *cli) *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "remove the stored API key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			host, err := keyHost(c, endpoint)
			if err != nil {
				return err
			}
			ks, err := c.keyStore()
			if err != nil {
				return err
			}
			if err := ks.Delete(host); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed api key for %s\n", host)
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "service endpoint (default: resolved endpoint)")
	return cmd
}
