// Package zone holds the endpoint table that maps upload zones to document
// service routes.
//
// Each upload zone on the page is identified by an ID (the element ID of the
// drop area). The table says where a zone's files are posted, under which
// multipart field, and whether the zone sends every selected file or only
// the first one:
//
//	| Zone               | Endpoint          | Field   | Policy   |
//	|--------------------|-------------------|---------|----------|
//	| convertToPdfArea   | /convert-to-pdf   | file    | Single   |
//	| convertFromPdfArea | /convert-from-pdf | file    | Single   |
//	| mergePdfArea       | /merge            | files[] | Multiple |
//	| splitPdfArea       | /split            | file    | Single   |
//	| editPdfArea        | /edit             | file    | Single   |
//	| signPdfArea        | /sign             | file    | Single   |
//
// Tables are validated when they are built, so an unknown zone identifier is
// a configuration error at startup instead of a request to an empty route.
//
//	table, err := zone.NewTable(routes...)
//	if err != nil {
//	    return err
//	}
//	route, err := table.Lookup(zone.Merge)
package zone
