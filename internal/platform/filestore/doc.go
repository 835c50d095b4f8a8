// Package filestore persists uploaded guide and tourist certificates on the
// local filesystem under server-generated names.
package filestore
