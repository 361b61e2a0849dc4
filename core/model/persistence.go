package model

import (
	"bytes"
	"encoding/gob"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/snappy"

	bikeErrors "github.com/UBC-MDS/DSCI522-2425-28-five-guys/pkg/errors"
)

// artifactMagic prefixes every artifact so that arbitrary files are rejected
// before decoding.
var artifactMagic = []byte("BIKEGOB1")

// SaveModel はモデルをgobでエンコードし、snappyで圧縮してファイルに保存する
//
// 使用例:
//
//	err := model.SaveModel(pipe, "results/models/ridge_pipeline.gob")
func SaveModel(model interface{}, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return bikeErrors.NewModelError("SaveModel", "create directory", err)
	}
	file, err := os.Create(filename)
	if err != nil {
		return bikeErrors.NewModelError("SaveModel", "create file", err)
	}
	defer file.Close()

	if err := SaveModelToWriter(model, file); err != nil {
		return err
	}
	return file.Close()
}

// LoadModel はSaveModelで保存したファイルからモデルを読み込む
//
// modelはデコード先のポインタ。
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return bikeErrors.NewModelError("LoadModel", "open file", err)
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter writes the compressed artifact to w.
func SaveModelToWriter(model interface{}, w io.Writer) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(model); err != nil {
		return bikeErrors.NewModelError("SaveModel", "encode", err)
	}
	if _, err := w.Write(artifactMagic); err != nil {
		return bikeErrors.NewModelError("SaveModel", "write", err)
	}
	if _, err := w.Write(snappy.Encode(nil, buf.Bytes())); err != nil {
		return bikeErrors.NewModelError("SaveModel", "write", err)
	}
	return nil
}

// LoadModelFromReader reads an artifact produced by SaveModelToWriter.
func LoadModelFromReader(model interface{}, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return bikeErrors.NewModelError("LoadModel", "read", err)
	}
	if !bytes.HasPrefix(data, artifactMagic) {
		return bikeErrors.NewModelError("LoadModel", "corrupt artifact", bikeErrors.New("missing artifact header"))
	}
	raw, err := snappy.Decode(nil, data[len(artifactMagic):])
	if err != nil {
		return bikeErrors.NewModelError("LoadModel", "corrupt artifact", err)
	}
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(model); err != nil {
		return bikeErrors.NewModelError("LoadModel", "decode", err)
	}
	return nil
}
