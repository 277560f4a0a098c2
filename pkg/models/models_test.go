package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFullName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Jane Austen", (&Author{FirstName: "Jane", LastName: "Austen"}).FullName())
	assert.Equal(t, "Homer", (&Author{FirstName: "Homer"}).FullName())
	assert.Equal(t, "ana", (&User{Name: "ana"}).FullName())
}
