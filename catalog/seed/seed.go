// CLAUDE:SUMMARY Seed dataset collections (robotics, vision, nlp) for bootstrapping a fresh catalog.
// Package seed provides curated dataset collections for bootstrapping a
// catalog.
//
// Each collection contains a set of dataset definitions with feature schemas
// and example URLs that can be bulk-inserted for quick setup or demos.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/framehub/datacat/catalog"
)

// FeatureDef describes one feature column to seed.
type FeatureDef struct {
	Name  string
	Dtype string
	Shape string // JSON array
	Split string
}

// DatasetDef describes a dataset to be inserted.
type DatasetDef struct {
	Name        string
	Version     string
	Description string
	Homepage    string
	Citation    string
	ExampleURL  string
	Features    []FeatureDef
}

// DatasetInput matches the catalog.Dataset fields needed for insertion.
type DatasetInput struct {
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	Description string       `json:"description"`
	Homepage    string       `json:"homepage"`
	Citation    string       `json:"citation"`
	ExampleURL  string       `json:"example_url"`
	Features    []FeatureDef `json:"features"`
}

// collections maps collection names to their dataset definitions.
var collections = map[string][]DatasetDef{
	"robotics": {
		{
			Name:        "mt_opt",
			Version:     "1.0.0",
			Description: "Datasets describing a large-scale multi-task robotic manipulation system operating on a fleet of robots, collecting episodes for skills such as picking, placing and rearranging objects.",
			Homepage:    "https://karolhausman.github.io/mt-opt/",
			Citation:    "@misc{herzog2021mtopt,\n  title={MT-Opt: Continuous Multi-Task Robotic Reinforcement Learning at Scale},\n  author={Herzog, Alexander and others},\n  year={2021}\n}",
			ExampleURL:  "https://storage.googleapis.com/tfds-data/catalog_examples/mt_opt-rlds.mt_opt_rlds-1.0.0.html",
			Features: []FeatureDef{
				{Name: "episode_id", Dtype: "string"},
				{Name: "skill", Dtype: "uint8"},
				{Name: "steps/observation/image", Dtype: "uint8", Shape: "[512,640,3]"},
				{Name: "steps/observation/gripper_closed", Dtype: "bool"},
				{Name: "steps/action/terminate_episode", Dtype: "float32"},
				{Name: "steps/is_terminal", Dtype: "bool"},
			},
		},
		{
			Name:        "bridge",
			Version:     "1.0.0",
			Description: "Robot manipulation trajectories collected on a low-cost arm across many kitchen environments, intended for multi-environment generalization research.",
			Homepage:    "https://rail-berkeley.github.io/bridgedata/",
			Citation:    "@inproceedings{walke2023bridgedata,\n  title={BridgeData V2: A Dataset for Robot Learning at Scale},\n  author={Walke, Homer and others},\n  year={2023}\n}",
			ExampleURL:  "https://storage.googleapis.com/tfds-data/catalog_examples/bridge-1.0.0.html",
			Features: []FeatureDef{
				{Name: "steps/observation/image_0", Dtype: "uint8", Shape: "[256,256,3]"},
				{Name: "steps/action", Dtype: "float32", Shape: "[7]"},
				{Name: "steps/language_instruction", Dtype: "string"},
				{Name: "steps/reward", Dtype: "float32"},
			},
		},
		{
			Name:        "droid",
			Version:     "1.0.0",
			Description: "A large-scale in-the-wild robot manipulation dataset with multi-view camera streams and language annotations.",
			Homepage:    "https://droid-dataset.github.io/",
			Citation:    "@article{khazatsky2024droid,\n  title={DROID: A Large-Scale In-the-Wild Robot Manipulation Dataset},\n  author={Khazatsky, Alexander and others},\n  year={2024}\n}",
			ExampleURL:  "https://storage.googleapis.com/tfds-data/catalog_examples/droid-1.0.0.html",
			Features: []FeatureDef{
				{Name: "steps/observation/exterior_image_1_left", Dtype: "uint8", Shape: "[180,320,3]"},
				{Name: "steps/observation/wrist_image_left", Dtype: "uint8", Shape: "[180,320,3]"},
				{Name: "steps/action", Dtype: "float64", Shape: "[7]"},
				{Name: "steps/language_instruction", Dtype: "string"},
			},
		},
	},
	"vision": {
		{
			Name:        "cifar10",
			Version:     "3.0.2",
			Description: "The CIFAR-10 dataset consists of 60000 32x32 colour images in 10 classes, with 6000 images per class.",
			Homepage:    "https://www.cs.toronto.edu/~kriz/cifar.html",
			Citation:    "@TECHREPORT{Krizhevsky09learningmultiple,\n  author={Alex Krizhevsky},\n  title={Learning multiple layers of features from tiny images},\n  year={2009}\n}",
			ExampleURL:  "https://storage.googleapis.com/tfds-data/catalog_examples/cifar10-3.0.2.html",
			Features: []FeatureDef{
				{Name: "image", Dtype: "uint8", Shape: "[32,32,3]"},
				{Name: "label", Dtype: "int64"},
			},
		},
		{
			Name:        "imagenet2012",
			Version:     "5.1.0",
			Description: "ILSVRC 2012, commonly known as ImageNet: 1.28 million training images over 1000 object classes.",
			Homepage:    "https://image-net.org/",
			Citation:    "@article{ILSVRC15,\n  author={Russakovsky, Olga and others},\n  title={ImageNet Large Scale Visual Recognition Challenge},\n  year={2015}\n}",
			ExampleURL:  "https://storage.googleapis.com/tfds-data/catalog_examples/imagenet2012-5.1.0.html",
			Features: []FeatureDef{
				{Name: "image", Dtype: "uint8", Shape: "[]"},
				{Name: "label", Dtype: "int64"},
				{Name: "file_name", Dtype: "string"},
			},
		},
	},
	"nlp": {
		{
			Name:        "squad",
			Version:     "3.0.0",
			Description: "Stanford Question Answering Dataset: reading comprehension questions posed on Wikipedia articles.",
			Homepage:    "https://rajpurkar.github.io/SQuAD-explorer/",
			Citation:    "@article{2016arXiv160605250R,\n  author={Rajpurkar, Pranav and others},\n  title={SQuAD: 100,000+ Questions for Machine Comprehension of Text},\n  year={2016}\n}",
			ExampleURL:  "https://storage.googleapis.com/tfds-data/catalog_examples/squad-3.0.0.html",
			Features: []FeatureDef{
				{Name: "context", Dtype: "string"},
				{Name: "question", Dtype: "string"},
				{Name: "answers/text", Dtype: "string"},
				{Name: "answers/answer_start", Dtype: "int32"},
			},
		},
	},
}

// Collections returns the list of available collection names.
func Collections() []string {
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	return names
}

// Datasets returns the dataset definitions for a collection.
func Datasets(collection string) ([]DatasetDef, bool) {
	defs, ok := collections[collection]
	return defs, ok
}

// Populate inserts all datasets from a collection via the given insert
// function. Returns the number inserted. Duplicates (same name+version,
// typically from re-running against a populated catalog) are skipped; any
// other insert failure aborts, since a seed definition that fails
// validation or quota is a real problem and silently dropping it would
// just undercount.
func Populate(ctx context.Context, addDataset func(ctx context.Context, d *DatasetInput) error, collection string) (int, error) {
	defs, ok := collections[collection]
	if !ok {
		return 0, fmt.Errorf("seed: unknown collection %q", collection)
	}

	var count int
	for _, def := range defs {
		d := &DatasetInput{
			Name:        def.Name,
			Version:     def.Version,
			Description: def.Description,
			Homepage:    def.Homepage,
			Citation:    def.Citation,
			ExampleURL:  def.ExampleURL,
			Features:    def.Features,
		}
		if err := addDataset(ctx, d); err != nil {
			if errors.Is(err, catalog.ErrDuplicateDataset) {
				continue
			}
			return count, fmt.Errorf("seed %s/%s: %w", collection, def.Name, err)
		}
		count++
	}
	return count, nil
}
