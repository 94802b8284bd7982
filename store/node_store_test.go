package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genealogy-service/models"
)

func TestCreateNode(t *testing.T) {
	clearTables(t)
	tree := createTestTree(t, "Smiths")

	node, err := testNodes.CreateNode(&models.Node{
		TreeID:    tree.ID,
		Name:      "Alice",
		PhotoURL:  strPtr("https://example.com/alice.jpg"),
		BirthDate: strPtr("1980-05-01"),
		Gender:    strPtr("female"),
		XPosition: 120.5,
		YPosition: -40,
	})
	require.NoError(t, err)
	assert.NotZero(t, node.ID)
	assert.Equal(t, tree.ID, node.TreeID)
	assert.Equal(t, "Alice", node.Name)
	require.NotNil(t, node.BirthDate)
	assert.Equal(t, "1980-05-01", *node.BirthDate)
	require.NotNil(t, node.Gender)
	assert.Equal(t, "female", *node.Gender)
	assert.Nil(t, node.Description)
	assert.Equal(t, 120.5, node.XPosition)
	assert.Equal(t, -40.0, node.YPosition)
	assert.NotEmpty(t, node.CreatedAt)
}

func TestCreateNodeMissingTree(t *testing.T) {
	clearTables(t)

	_, err := testNodes.CreateNode(&models.Node{TreeID: 9999, Name: "Orphan"})
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestListNodesByTreeID(t *testing.T) {
	clearTables(t)
	tree := createTestTree(t, "Smiths")

	first := createTestNode(t, tree.ID, "Alice")
	time.Sleep(10 * time.Millisecond)
	second := createTestNode(t, tree.ID, "Bob")

	nodes, err := testNodes.ListNodesByTreeID(tree.ID)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	// Creation order.
	assert.Equal(t, first.ID, nodes[0].ID)
	assert.Equal(t, second.ID, nodes[1].ID)
}

func TestListNodesByTreeIDEmpty(t *testing.T) {
	clearTables(t)
	tree := createTestTree(t, "Empty")

	nodes, err := testNodes.ListNodesByTreeID(tree.ID)
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestUpdateNode(t *testing.T) {
	clearTables(t)
	tree := createTestTree(t, "Smiths")
	node := createTestNode(t, tree.ID, "Alice")
	time.Sleep(10 * time.Millisecond)

	updated, err := testNodes.UpdateNode(node.ID, &models.Node{
		Name:        "Alice Smith",
		Gender:      strPtr("female"),
		Description: strPtr("matriarch"),
		XPosition:   300,
		YPosition:   80,
	})
	require.NoError(t, err)

	// The supplied fields are overwritten; id, tree_id and created_at are
	// unchanged.
	assert.Equal(t, node.ID, updated.ID)
	assert.Equal(t, node.TreeID, updated.TreeID)
	assert.Equal(t, node.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Alice Smith", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "matriarch", *updated.Description)
	assert.Equal(t, 300.0, updated.XPosition)
	assert.Nil(t, updated.PhotoURL)

	before, err := time.Parse(time.RFC3339, node.UpdatedAt)
	require.NoError(t, err)
	after, err := time.Parse(time.RFC3339, updated.UpdatedAt)
	require.NoError(t, err)
	assert.True(t, after.After(before), "updated_at should strictly increase")
}

func TestUpdateNodeNotFound(t *testing.T) {
	clearTables(t)

	_, err := testNodes.UpdateNode(9999, &models.Node{Name: "Ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteNodeCascadesRelationships(t *testing.T) {
	clearTables(t)
	tree := createTestTree(t, "Smiths")
	alice := createTestNode(t, tree.ID, "Alice")
	bob := createTestNode(t, tree.ID, "Bob")
	rel := createTestRelationship(t, tree.ID, alice.ID, bob.ID, "spouse")

	require.NoError(t, testNodes.DeleteNode(alice.ID))

	_, err := testNodes.GetNodeByID(alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = testRelationships.GetRelationshipByID(rel.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The other endpoint survives.
	_, err = testNodes.GetNodeByID(bob.ID)
	assert.NoError(t, err)
}

func TestDeleteNodeNotFound(t *testing.T) {
	clearTables(t)

	err := testNodes.DeleteNode(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}
