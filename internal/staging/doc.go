// Package staging reclaims disk space in the download directory left behind
// by runs that crashed or were killed before their own cleanup ran.
package staging
