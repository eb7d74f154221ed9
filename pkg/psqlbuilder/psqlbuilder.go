package psqlbuilder

import "github.com/Masterminds/squirrel"

// builder squirrel с плейсхолдерами $1, $2, ... для PostgreSQL
var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Select создает SELECT запрос с PostgreSQL плейсхолдерами
func Select(columns ...string) squirrel.SelectBuilder {
	return builder.Select(columns...)
}

// Insert создает INSERT запрос с PostgreSQL плейсхолдерами.
// UPDATE и DELETE здесь нет намеренно: журнал бронирований append-only,
// а расписания движок не изменяет.
func Insert(table string) squirrel.InsertBuilder {
	return builder.Insert(table)
}
