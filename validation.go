package main

import (
	"strings"
	"unicode"
)

func isValidProfileID(profileID string) bool {
	if profileID == "" || len(profileID) > 64 {
		return false
	}

	for _, r := range profileID {
		if r == '-' || r == '_' {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		return false
	}

	return true
}

func isValidCommanderName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 32 {
		return false
	}
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			continue
		}
		return false
	}
	return true
}

func isValidCommanderSex(sex string) bool {
	return sex == "male" || sex == "female"
}
