package main

import (
	"github.com/lodthe/fromcheck/internal/auditrun"

	"github.com/spf13/cobra"
)

var tableName string

var createTableCmd = &cobra.Command{
	Use:   "create-table",
	Short: "Create the DynamoDB table that stores audit reports",
	Long: `create-table creates the reports table in the configured AWS region.
The table name is taken from --table, then REPORTS_TABLE, then aws.reports_table.`,
	Args: cobra.NoArgs,
	RunE: runCreateTable,
}

func init() {
	createTableCmd.Flags().StringVar(&tableName, "table", "", "name of the audit reports table (env: REPORTS_TABLE)")

	rootCmd.AddCommand(createTableCmd)
}

func runCreateTable(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	name := config.AWS.ReportsTableName
	if tableName != "" {
		name = tableName
	}

	client, err := newDynamoDBClient(ctx, config)
	if err != nil {
		return err
	}

	err = auditrun.CreateTable(ctx, client, name)
	if err != nil {
		return err
	}

	logger.Info().Str("table_name", name).Str("region", config.AWS.Region).Msg("created successfully")

	return nil
}
