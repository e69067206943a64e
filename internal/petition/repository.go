package petition

import (
	"context"

	"github.com/namwkim/dataviz-storytelling/internal/dataset"

	"github.com/go-gota/gota/dataframe"
)

// Repository yields the raw petition and city lookup frames.
type Repository interface {
	Petitions(ctx context.Context) (dataframe.DataFrame, error)
	Cities(ctx context.Context) (dataframe.DataFrame, error)
}

// CSVRepository reads both frames from a dataset source.
type CSVRepository struct {
	src           dataset.Source
	petitionsFile string
	citiesFile    string
}

func NewCSVRepository(src dataset.Source, petitionsFile, citiesFile string) *CSVRepository {
	return &CSVRepository{
		src:           src,
		petitionsFile: petitionsFile,
		citiesFile:    citiesFile,
	}
}

func (r *CSVRepository) Petitions(ctx context.Context) (dataframe.DataFrame, error) {
	return dataset.LoadFile(ctx, r.src, r.petitionsFile, dataset.ReadPetitions)
}

func (r *CSVRepository) Cities(ctx context.Context) (dataframe.DataFrame, error) {
	return dataset.LoadFile(ctx, r.src, r.citiesFile, dataset.ReadCities)
}
