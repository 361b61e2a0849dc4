package validation

import (
	"math"

	"github.com/UBC-MDS/DSCI522-2425-28-five-guys/dataset"
)

// BikeSchema returns the rule set for the raw Seoul bike sharing data.
func BikeSchema() Schema {
	return Schema{
		Columns: []Column{
			{Name: dataset.RawDate, Type: String},
			{Name: dataset.RawRentedBikeCount, Type: Int, Checks: []Check{InRange(0, math.Inf(1))}},
			{Name: dataset.RawHour, Type: Int, Checks: []Check{InRange(0, 23)}},
			{Name: dataset.RawTemperature, Type: Float},
			{Name: dataset.RawHumidity, Type: Int, Checks: []Check{InRange(0, 100)}},
			{Name: dataset.RawWindSpeed, Type: Float},
			{Name: dataset.RawVisibility, Type: Int},
			{Name: dataset.RawDewPoint, Type: Float},
			{Name: dataset.RawSolarRadiation, Type: Float},
			{
				Name:     dataset.RawRainfall,
				Type:     Float,
				Nullable: true,
				Checks:   []Check{MaxNullFraction(0.05, "Too many null values in '"+dataset.RawRainfall+"' column.")},
			},
			{Name: dataset.RawSnowfall, Type: Float},
			{Name: dataset.RawSeasons, Type: String, Checks: []Check{IsIn(dataset.SeasonOrder...)}},
			{Name: dataset.RawHoliday, Type: String, Checks: []Check{IsIn(dataset.HolidayYes, dataset.HolidayNo)}},
			{Name: dataset.RawFunctioningDay, Type: String, Checks: []Check{IsIn(dataset.FunctioningYes, dataset.FunctioningNo)}},
		},
		Checks: []TableCheck{NoDuplicateRows(), NoEmptyRows()},
	}
}
