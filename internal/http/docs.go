// package http contains the request and response descriptors exchanged
// between the client, its interceptors and the xhr transport. the package
// name is meant to be same with the top level package's concern so that IDEs
// and code editors could pick them up
//
// the package also contains the error kinds a rejected exchange carries
package http
