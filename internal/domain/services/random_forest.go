package services

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
)

// RandomForest is a tree-ensemble scam classifier loaded from an offline export.
// It only predicts; training happens outside this service.
type RandomForest struct {
	trees        []*decisionTree
	featureNames []string
	name         string
	version      string
}

// decisionTree represents a single tree in the forest
type decisionTree struct {
	root *dtNode
}

// dtNode represents a node in a decision tree
type dtNode struct {
	feature     int       // Feature index for split
	threshold   float64   // Split threshold
	left        *dtNode   // Left child (feature <= threshold)
	right       *dtNode   // Right child (feature > threshold)
	isLeaf      bool
	probability []float64 // Class probabilities (for leaf nodes)
}

// randomForestExport is the on-disk model format. Each tree is a flat node
// list; children always point forward, node 0 is the root.
type randomForestExport struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	FeatureNames []string     `json:"feature_names"`
	Trees        []treeExport `json:"trees"`
}

type treeExport struct {
	Nodes []nodeExport `json:"nodes"`
}

type nodeExport struct {
	Feature     int       `json:"feature"`
	Threshold   float64   `json:"threshold"`
	Left        int       `json:"left"`
	Right       int       `json:"right"`
	Leaf        bool      `json:"leaf"`
	Probability []float64 `json:"probability,omitempty"`
}

// RandomForestInfo describes a loaded model
type RandomForestInfo struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	NumTrees     int      `json:"num_trees"`
	FeatureNames []string `json:"feature_names"`
}

// LoadRandomForest reads a model export from disk
func LoadRandomForest(path string, featureNames []string) (*RandomForest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	return ParseRandomForest(data, featureNames)
}

// ParseRandomForest decodes a model export. featureNames is the vector order
// the caller will score with; an export that declares a different order is rejected.
func ParseRandomForest(data []byte, featureNames []string) (*RandomForest, error) {
	var export randomForestExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if len(export.Trees) == 0 {
		return nil, fmt.Errorf("model has no trees")
	}
	if len(export.FeatureNames) > 0 && !slices.Equal(export.FeatureNames, featureNames) {
		return nil, fmt.Errorf("model feature order %v does not match %v", export.FeatureNames, featureNames)
	}

	rf := &RandomForest{
		trees:        make([]*decisionTree, 0, len(export.Trees)),
		featureNames: featureNames,
		name:         export.Name,
		version:      export.Version,
	}
	if rf.name == "" {
		rf.name = "RandomForest"
	}

	for i, t := range export.Trees {
		root, err := buildTree(t.Nodes, len(featureNames))
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		rf.trees = append(rf.trees, &decisionTree{root: root})
	}

	return rf, nil
}

// buildTree links a flat node list into a tree
func buildTree(nodes []nodeExport, numFeatures int) (*dtNode, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("empty tree")
	}

	built := make([]*dtNode, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.Leaf {
			if len(n.Probability) < 2 {
				return nil, fmt.Errorf("leaf %d needs two class probabilities", i)
			}
			built[i] = &dtNode{isLeaf: true, probability: n.Probability}
			continue
		}
		if n.Feature < 0 || n.Feature >= numFeatures {
			return nil, fmt.Errorf("node %d splits on unknown feature %d", i, n.Feature)
		}
		if n.Left <= i || n.Right <= i || n.Left >= len(nodes) || n.Right >= len(nodes) {
			return nil, fmt.Errorf("node %d has invalid children", i)
		}
		built[i] = &dtNode{
			feature:   n.Feature,
			threshold: n.Threshold,
			left:      built[n.Left],
			right:     built[n.Right],
		}
	}
	return built[0], nil
}

// Score returns the forest's mean probability for the scam class
func (rf *RandomForest) Score(features []float64) (float64, error) {
	if len(features) != len(rf.featureNames) {
		return 0, fmt.Errorf("expected %d features, got %d", len(rf.featureNames), len(features))
	}

	total := 0.0
	for _, tree := range rf.trees {
		total += rf.treePredictProba(tree.root, features)[1]
	}
	return total / float64(len(rf.trees)), nil
}

// treePredictProba predicts class probabilities for a single tree
func (rf *RandomForest) treePredictProba(node *dtNode, point []float64) []float64 {
	for !node.isLeaf {
		if point[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.probability
}

// GetModelInfo returns information about the loaded model
func (rf *RandomForest) GetModelInfo() RandomForestInfo {
	return RandomForestInfo{
		Name:         rf.name,
		Version:      rf.version,
		NumTrees:     len(rf.trees),
		FeatureNames: rf.featureNames,
	}
}
