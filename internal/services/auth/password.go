// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth

import (
	"bufio"
	"embed"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

//go:embed common_passwords.txt
var commonPasswordsFS embed.FS

var commonPasswords map[string]struct{}

func init() {
	commonPasswords = make(map[string]struct{})
	file, err := commonPasswordsFS.Open("common_passwords.txt")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		password := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if password != "" && !strings.HasPrefix(password, "#") {
			commonPasswords[password] = struct{}{}
		}
	}
}

const (
	// DefaultPasswordMinLength is the minimum accepted password length.
	DefaultPasswordMinLength = 8
	// PasswordMaxLength keeps passwords within bcrypt's 72 byte input limit.
	PasswordMaxLength = 70
)

// PasswordValidator checks password strength.
type PasswordValidator struct {
	MinLength            int
	MaxLength            int
	CheckCommonPasswords bool
	CheckUserSimilarity  bool
}

// NewPasswordValidator returns a validator with all checks enabled. A
// non-positive minLength falls back to DefaultPasswordMinLength.
func NewPasswordValidator(minLength int) *PasswordValidator {
	if minLength <= 0 {
		minLength = DefaultPasswordMinLength
	}
	return &PasswordValidator{
		MinLength:            minLength,
		MaxLength:            PasswordMaxLength,
		CheckCommonPasswords: true,
		CheckUserSimilarity:  true,
	}
}

// Validate returns one message per failed check, or nil if password is
// acceptable. userAttributes are values the password must not resemble.
func (v *PasswordValidator) Validate(password string, userAttributes ...string) []string {
	var problems []string

	length := utf8.RuneCountInString(password)
	if length < v.MinLength {
		problems = append(problems, fmt.Sprintf("must be at least %d characters", v.MinLength))
	}
	if v.MaxLength > 0 && length > v.MaxLength {
		problems = append(problems, fmt.Sprintf("must not exceed %d characters", v.MaxLength))
	}

	if isEntirelyNumeric(password) {
		problems = append(problems, "cannot be entirely numeric")
	}

	if v.CheckCommonPasswords && isCommonPassword(password) {
		problems = append(problems, "is too common")
	}

	if v.CheckUserSimilarity && isSimilarToUserAttributes(password, userAttributes) {
		problems = append(problems, "is too similar to your email")
	}

	return problems
}

func isEntirelyNumeric(password string) bool {
	for _, r := range password {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(password) > 0
}

func isCommonPassword(password string) bool {
	_, exists := commonPasswords[strings.ToLower(password)]
	return exists
}

func isSimilarToUserAttributes(password string, attributes []string) bool {
	if password == "" {
		return false
	}
	passwordLower := strings.ToLower(password)

	for _, attr := range attributes {
		if attr == "" {
			continue
		}
		attrLower := strings.ToLower(attr)

		if strings.Contains(passwordLower, attrLower) || strings.Contains(attrLower, passwordLower) {
			return true
		}
		if similarity(passwordLower, attrLower) > 0.7 {
			return true
		}
	}

	return false
}

// similarity is the longest common subsequence relative to the longer input.
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	return float64(longestCommonSubsequence(a, b)) / float64(max(len(a), len(b)))
}

func longestCommonSubsequence(a, b string) int {
	m, n := len(a), len(b)
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
