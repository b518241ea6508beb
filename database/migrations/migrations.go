// Package migrations holds the SQL store's schema migrations. Importing it
// registers them with pkg/migration.
package migrations
