package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genealogy-service/models"
)

func layoutFor(tree *models.Tree, nodes []*models.Node, rels []*models.Relationship) *models.TreeLayout {
	return &models.TreeLayout{Tree: *tree, Nodes: nodes, Relationships: rels}
}

func TestSaveLayout(t *testing.T) {
	clearTables(t)
	tree := createTestTree(t, "Smiths")
	alice := createTestNode(t, tree.ID, "Alice")
	bob := createTestNode(t, tree.ID, "Bob")
	rel := createTestRelationship(t, tree.ID, alice.ID, bob.ID, "relative")

	tree.Name = "Smith Family"
	alice.XPosition = 120
	alice.YPosition = 60
	bob.XPosition = 240
	bob.YPosition = 60
	rel.RelationshipType = "spouse"

	updated, err := testLayouts.SaveLayout(tree.ID,
		layoutFor(tree, []*models.Node{alice, bob}, []*models.Relationship{rel}))
	require.NoError(t, err)
	assert.Equal(t, "Smith Family", updated.Tree.Name)
	require.Len(t, updated.Nodes, 2)
	assert.Equal(t, float64(120), updated.Nodes[0].XPosition)
	require.Len(t, updated.Relationships, 1)
	assert.Equal(t, "spouse", updated.Relationships[0].RelationshipType)

	// The writes were committed.
	saved, err := testNodes.GetNodeByID(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(240), saved.XPosition)
}

func TestSaveLayoutAtomic(t *testing.T) {
	clearTables(t)
	tree := createTestTree(t, "Smiths")
	alice := createTestNode(t, tree.ID, "Alice")

	tree.Name = "Renamed"
	alice.XPosition = 120
	bogus := &models.Node{ID: 9999, Name: "Ghost"}

	_, err := testLayouts.SaveLayout(tree.ID,
		layoutFor(tree, []*models.Node{alice, bogus}, nil))
	assert.ErrorIs(t, err, ErrNotFound)

	// Nothing persisted, not even the rows before the bad one.
	saved, err := testTrees.GetTreeByID(tree.ID)
	require.NoError(t, err)
	assert.Equal(t, "Smiths", saved.Name)
	savedNode, err := testNodes.GetNodeByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(0), savedNode.XPosition)
}

func TestSaveLayoutForeignNode(t *testing.T) {
	clearTables(t)
	smiths := createTestTree(t, "Smiths")
	joneses := createTestTree(t, "Joneses")
	carol := createTestNode(t, joneses.ID, "Carol")

	// A node from another tree is invisible to the save.
	_, err := testLayouts.SaveLayout(smiths.ID,
		layoutFor(smiths, []*models.Node{carol}, nil))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveLayoutTreeNotFound(t *testing.T) {
	clearTables(t)

	_, err := testLayouts.SaveLayout(9999, layoutFor(&models.Tree{Name: "Ghost"}, nil, nil))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUndoLayout(t *testing.T) {
	clearTables(t)
	tree := createTestTree(t, "Smiths")
	alice := createTestNode(t, tree.ID, "Alice")

	tree.Name = "Renamed"
	alice.XPosition = 300
	alice.YPosition = 150
	_, err := testLayouts.SaveLayout(tree.ID, layoutFor(tree, []*models.Node{alice}, nil))
	require.NoError(t, err)

	rec, err := testHistory.Undo(tree.ID)
	require.NoError(t, err)
	assert.Equal(t, EntityLayout, rec.EntityType)
	assert.Equal(t, ActionUpdate, rec.ActionType)

	restoredTree, err := testTrees.GetTreeByID(tree.ID)
	require.NoError(t, err)
	assert.Equal(t, "Smiths", restoredTree.Name)
	restoredNode, err := testNodes.GetNodeByID(alice.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(0), restoredNode.XPosition)
	assert.Equal(t, float64(0), restoredNode.YPosition)
}
