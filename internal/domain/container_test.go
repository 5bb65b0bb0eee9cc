package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneSharesNothing(t *testing.T) {
	rec := ContainerRecord{
		Id:   "abc",
		Name: "web",
		Networks: map[string]NetworkAttachment{
			"apps": {Address: "172.18.0.2", Aliases: []string{"web", "www"}},
		},
		DomainTokens: []string{"example.com"},
		Running:      true,
	}

	clone := rec.Clone()
	clone.Networks["apps"].Aliases[0] = "mutated"
	clone.Networks["extra"] = NetworkAttachment{Address: "10.0.0.1"}
	clone.DomainTokens[0] = "mutated.example.com"

	assert.Equal(t, []string{"web", "www"}, rec.Networks["apps"].Aliases)
	assert.NotContains(t, rec.Networks, "extra")
	assert.Equal(t, []string{"example.com"}, rec.DomainTokens)
}

func TestCloneNilFields(t *testing.T) {
	rec := ContainerRecord{Id: "abc", Name: "web", Running: true}
	clone := rec.Clone()
	assert.Nil(t, clone.Networks)
	assert.Nil(t, clone.DomainTokens)
	assert.Equal(t, rec, clone)
}
