// Package testsupport holds fixtures shared by package tests: temp-dir
// configurations, sized file writers, and a throwaway history ledger.
package testsupport
