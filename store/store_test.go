package store

import (
	"database/sql"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"genealogy-service/db"
	"genealogy-service/models"
)

// These are integration tests: they require a running PostgreSQL instance
// configured via the DB_* environment variables and are skipped wholesale
// otherwise. Use a DEDICATED TEST DATABASE: tables are truncated between
// test flows.

var (
	testDB            *sql.DB
	testHistory       *HistoryStore
	testTrees         *TreeStore
	testNodes         *NodeStore
	testRelationships *RelationshipStore
	testLayouts       *LayoutStore
)

func TestMain(m *testing.M) {
	if os.Getenv("DB_HOST") == "" || os.Getenv("DB_USER") == "" || os.Getenv("DB_NAME") == "" {
		log.Println("Skipping store tests: DB_HOST, DB_USER, or DB_NAME environment variables not set.")
		os.Exit(0)
	}

	pool, err := db.Open(db.ConfigFromEnv())
	if err != nil {
		log.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.Migrate(pool); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}

	testDB = pool
	testHistory = NewHistoryStore(pool, zap.NewNop())
	testTrees = NewTreeStore(pool, testHistory)
	testNodes = NewNodeStore(pool, testHistory)
	testRelationships = NewRelationshipStore(pool, testHistory)
	testLayouts = NewLayoutStore(pool, testHistory)

	os.Exit(m.Run())
}

func clearTables(t *testing.T) {
	t.Helper()
	_, err := testDB.Exec(`TRUNCATE trees, nodes, relationships, history RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }

func createTestTree(t *testing.T, name string) *models.Tree {
	t.Helper()
	tree, err := testTrees.CreateTree(name, nil)
	require.NoError(t, err)
	require.NotZero(t, tree.ID)
	return tree
}

func createTestNode(t *testing.T, treeID int64, name string) *models.Node {
	t.Helper()
	node, err := testNodes.CreateNode(&models.Node{TreeID: treeID, Name: name})
	require.NoError(t, err)
	require.NotZero(t, node.ID)
	return node
}

func createTestRelationship(t *testing.T, treeID, sourceID, targetID int64, relType string) *models.Relationship {
	t.Helper()
	rel, err := testRelationships.CreateRelationship(&models.Relationship{
		TreeID:           treeID,
		SourceNodeID:     sourceID,
		TargetNodeID:     targetID,
		RelationshipType: relType,
	})
	require.NoError(t, err)
	require.NotZero(t, rel.ID)
	return rel
}
