/*
Package gtfsimport builds the stop table from a GTFS static feed.

The feed is a zip holding stops.txt, routes.txt, trips.txt and
stop_times.txt. For every stop with a public stop code the importer
collects the routes serving it, the vehicle type of the first route seen
and a direction guessed from the trip headsigns, then writes one CSV row:

	stop_id,stop_code,stop_name,stop_lat,stop_lon,Routes,Direction,Accessibility,Type

Routes are joined with " | ". Stops no trip visits get empty routes and
direction and type Bus.

Feeds published on a CKAN open data portal can be located with
ResolveDownloadURL, which picks the first ZIP resource of a package.
*/
package gtfsimport
