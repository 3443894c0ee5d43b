package pipeline

import (
	"context"

	"github.com/backmassage/attrition/internal/chart"
	"github.com/backmassage/attrition/internal/config"
	"github.com/backmassage/attrition/internal/dataset"
	"github.com/backmassage/attrition/internal/ml"
	"github.com/backmassage/attrition/internal/naming"
	"github.com/backmassage/attrition/internal/report"
)

const modelName = "model"

var modelJob = Job{
	Name:     modelName,
	Title:    "Q4 attrition model",
	Workbook: naming.ModelWorkbook,
	Required: []dataset.Field{dataset.Left},
	run:      runModel,
}

// Model display names, as written to the workbook.
const (
	LogisticName = "Logistic Regression"
	ForestName   = "Random Forest"
)

// classLabels name the confusion matrix axes in class order [stayed, left].
var classLabels = [2]string{"Stayed (0)", "Left (1)"}

// Score is one model's evaluation on the test partition.
type Score struct {
	Model     string
	Accuracy  float64
	Report    ml.Report
	Confusion [2][2]int
}

// Classification is the outcome of fitting both classifiers.
type Classification struct {
	Features    *ml.FeatureMatrix
	Split       ml.Split
	Logistic    Score
	Forest      Score
	Importances []ml.Importance // Top-ranked forest importances.

	// Optimiser steps of the logistic fit and whether it met the tolerance.
	LogisticIterations int
	LogisticConverged  bool
}

// featureColumns turns every column except the target into a model input.
// Numeric and boolean columns pass through; the rest are categorical.
func featureColumns(ds *dataset.Dataset) []ml.Column {
	target, _ := ds.Column(dataset.Left)
	var cols []ml.Column
	for _, info := range ds.Dtypes() {
		if info.Name == target {
			continue
		}
		c := ml.Column{Name: info.Name, Dtype: info.Dtype}
		if ds.IsNumeric(info.Name) {
			c.Values = ds.ColumnFloats(info.Name)
		} else {
			c.Levels = ds.ColumnStrings(info.Name)
		}
		cols = append(cols, c)
	}
	return cols
}

// Classify encodes the dataset, splits it and fits both models on the
// training partition. The same cfg and data always give the same result.
func Classify(ctx context.Context, ds *dataset.Dataset, cfg *config.Config) (*Classification, error) {
	y, err := ds.Labels()
	if err != nil {
		return nil, err
	}
	fm, err := ml.Encode(featureColumns(ds))
	if err != nil {
		return nil, err
	}
	split, err := ml.TrainTestSplit(y, cfg.TestSize, cfg.Seed, cfg.Stratify)
	if err != nil {
		return nil, err
	}
	xTrain, xTest := fm.Rows(split.Train), fm.Rows(split.Test)
	yTrain, yTest := pick(y, split.Train), pick(y, split.Test)

	c := &Classification{Features: fm, Split: split}

	lr, err := ml.NewLogisticRegression(ml.DefaultC, cfg.MaxIter)
	if err != nil {
		return nil, err
	}
	if err := lr.Fit(ctx, xTrain, yTrain); err != nil {
		return nil, err
	}
	c.LogisticIterations, c.LogisticConverged = lr.Iterations(), lr.Converged()
	pred, err := lr.Predict(xTest)
	if err != nil {
		return nil, err
	}
	if c.Logistic, err = score(LogisticName, yTest, pred); err != nil {
		return nil, err
	}

	rf, err := ml.NewRandomForest(cfg.Trees, cfg.Seed)
	if err != nil {
		return nil, err
	}
	rf.MaxFeatures = cfg.MaxFeatures
	rf.Workers = cfg.Workers
	if err := rf.Fit(ctx, xTrain, yTrain); err != nil {
		return nil, err
	}
	if pred, err = rf.Predict(xTest); err != nil {
		return nil, err
	}
	if c.Forest, err = score(ForestName, yTest, pred); err != nil {
		return nil, err
	}

	c.Importances, err = ml.RankImportances(fm.Names, rf.FeatureImportances(), cfg.TopFeatures)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func score(model string, yTrue, yPred []int) (Score, error) {
	s := Score{Model: model}
	var err error
	if s.Report, err = ml.ClassificationReport(yTrue, yPred); err != nil {
		return s, err
	}
	s.Accuracy = s.Report.Accuracy
	s.Confusion, err = ml.ConfusionMatrix(yTrue, yPred)
	return s, err
}

func pick(y, idx []int) []int {
	out := make([]int, len(idx))
	for i, k := range idx {
		out[i] = y[k]
	}
	return out
}

// Report lays the model results out as sheets.
func (c *Classification) Report(source string) *report.Report {
	r := report.New(modelName, source)

	s := r.Add(report.NewTable("summary", "model", "metric", "value"))
	for _, sc := range []Score{c.Logistic, c.Forest} {
		s.Append(sc.Model, "accuracy", sc.Accuracy)
	}

	classificationTable(r, "logistic_report", c.Logistic.Report)
	classificationTable(r, "rf_report", c.Forest.Report)

	fi := r.Add(report.NewTable("feature_importances", "feature", "importance"))
	for _, imp := range c.Importances {
		fi.Append(imp.Feature, imp.Value)
	}

	cm := r.Add(report.NewTable("confusion_matrices", "model", "actual", "predicted_stayed", "predicted_left"))
	for _, sc := range []Score{c.Logistic, c.Forest} {
		for actual, row := range sc.Confusion {
			cm.Append(sc.Model, actual, row[0], row[1])
		}
	}

	ft := r.Add(report.NewTable("features", "column", "dtype"))
	for i, name := range c.Features.Names {
		ft.Append(name, c.Features.Dtypes[i])
	}
	return r
}

// classificationTable writes a report with the accuracy line laid out as a
// printed classification report: f1-score holds the accuracy and support the
// test size.
func classificationTable(r *report.Report, name string, rep ml.Report) {
	t := r.Add(report.NewTable(name, "class_or_metric", "precision", "recall", "f1-score", "support"))
	row := func(rr ml.ReportRow) {
		t.Append(rr.Label, rr.Precision, rr.Recall, rr.F1, rr.Support)
	}
	for _, rr := range rep.Classes {
		row(rr)
	}
	t.Append("accuracy", nil, nil, rep.Accuracy, rep.Total)
	row(rep.Macro)
	row(rep.Weighted)
}

// Charts renders one confusion matrix per model.
func (c *Classification) Charts(outputDir string) ([]string, error) {
	var images []string
	for _, m := range []struct {
		score Score
		image string
		title string
	}{
		{c.Logistic, naming.LogisticCMImage, "Logistic Regression CM"},
		{c.Forest, naming.ForestCMImage, "Random Forest CM"},
	} {
		path := naming.ImagePath(outputDir, m.image)
		if err := chart.ConfusionMatrix(path, figure(m.title, "", "", 4, 3, 200), m.score.Confusion, classLabels); err != nil {
			return nil, err
		}
		images = append(images, path)
	}
	return images, nil
}

func runModel(ctx context.Context, env *Env) (*Result, error) {
	c, err := Classify(ctx, env.Data, env.Cfg)
	if err != nil {
		return nil, err
	}
	env.Log.Debug("  %d features, %d train rows, %d test rows",
		len(c.Features.Names), len(c.Split.Train), len(c.Split.Test))
	if !c.LogisticConverged {
		env.Log.Warn("  Logistic regression stopped at %d iterations without converging", c.LogisticIterations)
	}
	env.Log.Info("  Accuracy - Logistic: %.4f, Random Forest: %.4f", c.Logistic.Accuracy, c.Forest.Accuracy)
	images, err := c.Charts(env.Cfg.OutputDir)
	if err != nil {
		return nil, err
	}
	return &Result{Report: c.Report(env.Data.Path), Images: images}, nil
}
